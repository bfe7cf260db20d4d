// Package watch implements the mediator between a cache-backed observable
// GraphQL query and a rendering layer.
//
// A QueryData instance owns exactly one observable query and at most one push
// subscription at a time. The rendering adapter drives it through a fixed
// cycle:
//
//	snap, err := data.Execute(ctx, client) // bind/update observable, compute snapshot
//	... render snap ...
//	unmount := data.AfterExecute(ctx)      // subscribe, fire callbacks
//	... on push the adapter re-invokes Execute ...
//	data.Cleanup()                         // on unmount
//
// Execute binds or rebinds the observable (diffing prepared options with deep
// structural equality), then synthesizes the externally visible Snapshot:
// skip yields a ready-empty result, a settled error keeps the last good data,
// and PreviousData carries the last non-empty data across loading gaps.
// AfterExecute opens the push subscription, which suppresses structurally
// identical pushes and recovers from structured query errors by
// resubscribing without losing the handle's cached state.
//
// During a server render the mediator participates in a render-blocking pass
// (package ssr): observables are shared across mediators requesting the same
// document and variables, network-forcing fetch policies are downgraded to
// cache-first, and FetchData exposes a one-shot settle signal the pass waits
// on.
//
// A QueryData must be driven from a single goroutine. The push channel
// re-enters the mediator through its observer callbacks, and correctness
// relies on idempotent teardown and equality-gated mutation rather than
// locking.
package watch
