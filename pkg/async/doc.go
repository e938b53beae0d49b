// Package async provides cancellable handles for concurrently running
// functions.
//
// A Handle wraps a function running in its own goroutine with a derived,
// individually cancellable context. It is the building block for long-running
// remote tasks: the caller can cancel, await, or poll completion without
// touching the goroutine directly.
//
// Basic usage:
//
//	h := async.Run(ctx, func(ctx context.Context) error {
//	    return doWork(ctx)
//	})
//	h.Cancel()          // request cooperative cancellation
//	err := h.Await()    // block until the function returns
//
// When registration must happen before the function can observe itself (for
// example inserting the handle into a registry the function's cleanup removes
// it from), split construction and start:
//
//	h := async.New(fn)
//	registry[name] = h
//	h.Start(ctx)
package async
