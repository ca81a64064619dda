// Package email delivers notifications over email.
//
// EmailSender is the provider seam. Three implementations ship with the package:
//   - NewPostmarkClient sends through Postmark with open and link tracking
//   - NewResendClient sends through Resend
//   - NewDevSender writes each email as HTML plus JSON metadata to a directory
//
// NewFromConfig picks one from Config.Provider.
//
// Notifier sits on top of an EmailSender and an AddressBook and implements
// notifications.ChannelSender. A recipient without an address is never an
// error: the send yields a failed DeliveryResult carrying ErrNoAddress.
//
//	sender, err := email.NewFromConfig(cfg)
//	if err != nil {
//	    return err
//	}
//	notifier := email.NewNotifier(sender, email.NewPostgresAddressBook(pool, ""),
//	    email.WithBatchSize(cfg.BatchSize),
//	    email.WithBatchDelay(cfg.BatchDelay),
//	)
//
//	res := notifier.SendTo(ctx, email.Recipient{Address: "user@example.com"}, email.Content{
//	    Subject: "Your export is ready",
//	    HTML:    html,
//	})
//
// SendBulk processes messages in fixed-size batches (50 by default) and
// waits between batches (1s by default) to stay under provider rate limits.
// Each recipient's result is independent of the others.
//
// # Error Handling
//
//   - ErrInvalidConfig: provider configuration validation failed
//   - ErrInvalidParams: email parameters validation failed
//   - ErrFailedToSendEmail: the provider rejected or failed the request
//   - ErrNoAddress: the recipient has no email address
//   - ErrAddressLookup: the address book could not be queried
package email
