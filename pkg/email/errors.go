package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("email: failed to send email")
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrInvalidParams     = errors.New("email: invalid params")
	ErrNoAddress         = errors.New("email: no address for recipient")
	ErrAddressLookup     = errors.New("email: address lookup failed")
	ErrUnknownProvider   = errors.New("email: unknown provider")
)
