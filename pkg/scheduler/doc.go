// Package scheduler runs the two background loops of the notification
// pipeline.
//
// The dispatch tick (30s by default) loads pending notifications that are
// unscheduled or due, oldest first, and replays each through a Dispatcher,
// normally notifications.Manager. Dispatch is single-flight within a process:
// a tick that fires while the previous one is still running is skipped. When
// several replicas run, WithLocker adds a distributed lock (see pkg/redis);
// without it two instances can dispatch the same row twice.
//
// The hygiene tick (24h by default) deletes notifications past the retention
// window, deactivates tokens unused for StaleTokenDays, deletes tokens
// inactive for PruneTokenDays and asks the push sender to probe the rest.
// Hygiene failures are logged and never stop the loop.
//
//	s, err := scheduler.New(store, manager,
//	    scheduler.WithConfig(cfg),
//	    scheduler.WithTokenRegistry(registry),
//	    scheduler.WithTokenCleaner(pushSender),
//	    scheduler.WithLocker(redis.NewLocker(client, "notifykit")),
//	)
//	if err != nil {
//	    return err
//	}
//	g.Go(s.Run(ctx))
//
// RunDispatch and RunHygiene can be called directly for manual runs.
package scheduler
