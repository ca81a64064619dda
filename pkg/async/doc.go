// Package async provides generic futures for running work concurrently and
// joining the results.
//
// Async starts a function in its own goroutine and returns a *Future. Await
// blocks for the result, AwaitWithTimeout bounds the wait, and IsComplete
// polls. WaitAll joins a set of futures and stops at the first error, while
// Settle joins all of them and reports every outcome, which suits fan-out
// where partial failure is expected:
//
//	futures := make([]*async.Future[Result], 0, len(channels))
//	for _, ch := range channels {
//	    futures = append(futures, async.Async(ctx, ch, send))
//	}
//	for _, o := range async.Settle(futures...) {
//	    // inspect o.Value and o.Err
//	}
package async
