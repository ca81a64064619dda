// Package redis connects to Redis and provides the distributed lock used by
// the notification scheduler.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	locker := redis.NewLocker(client, cfg.LockPrefix)
//	unlock, ok, err := locker.TryLock(ctx, "scheduler:dispatch", time.Minute)
//	if err != nil || !ok {
//		return err
//	}
//	defer unlock(context.WithoutCancel(ctx))
//
// Healthcheck returns a probe suitable for readiness endpoints.
package redis
