package observable

import (
	"context"
	"time"

	graphql "github.com/hanpama/watchquery/internal/graphql"
)

// Client is the cache/network engine capability consumed by the mediator.
// It creates long-lived observable queries backed by a normalized cache.
type Client interface {
	// WatchQuery creates a new observable query for the given options.
	WatchQuery(ctx context.Context, opts Options) (Query, error)
	// DisableNetworkFetches reports whether the client is configured to skip
	// real network round-trips, as during a server render with ssr disabled.
	DisableNetworkFetches() bool
}

// Query is a live, cache-backed query subscription bound to exactly one
// (document, variables) pair. It emits updated states as the underlying
// store changes and caches its last settled state.
type Query interface {
	// Subscribe opens a push channel. Observer callbacks are invoked
	// synchronously with respect to the emitting store write.
	Subscribe(obs Observer) Subscription

	// SetOptions applies new options to the running query, possibly
	// triggering a network request. The returned error reports rejection of
	// the update itself; query errors surface through the push channel.
	SetOptions(ctx context.Context, opts Options) error

	// CurrentState reads the query's present state from the cache.
	CurrentState() graphql.ObservableState

	// LastState returns the last settled state, or nil if none was recorded.
	LastState() *graphql.ObservableState
	// LastError returns the last error pushed, or nil.
	LastError() *graphql.QueryError
	// ResetLastState clears the cached last state and last error, so a fresh
	// subscription does not replay them.
	ResetLastState()
	// RestoreLastState reinstates a previously captured last state and error.
	RestoreLastState(last *graphql.ObservableState, lastErr *graphql.QueryError)
	// ResetStoreErrors clears query-level errors recorded in the store.
	ResetStoreErrors()

	// Variables returns the variables the query is currently bound to.
	Variables() map[string]any

	Refetch(ctx context.Context, variables map[string]any) error
	FetchMore(ctx context.Context, opts FetchMoreOptions) error
	UpdateQuery(fn func(prev any, variables map[string]any) any)
	StartPolling(interval time.Duration)
	StopPolling()
	SubscribeToMore(opts SubscribeToMoreOptions) (cancel func())

	// TearDown stops the query and releases its cache resources. A paused
	// query is revived by a later Subscribe or SetOptions.
	TearDown()
}

// Observer receives pushed states from a Query. OnError is only ever invoked
// with a *graphql.QueryError by conforming engines; any other error value is
// treated as a defect by the subscriber.
type Observer struct {
	OnNext  func(state graphql.ObservableState)
	OnError func(err error)
}

// Subscription is a single active push channel on a Query.
type Subscription interface {
	// Unsubscribe closes the channel. Idempotent.
	Unsubscribe()
}

// FetchMoreOptions requests additional data merged into the query's result.
type FetchMoreOptions struct {
	Variables   map[string]any
	UpdateQuery func(prev any, fetchMoreResult any) any
}

// SubscribeToMoreOptions attaches a GraphQL subscription whose pushes are
// merged into the query's cached result.
type SubscribeToMoreOptions struct {
	Document    string
	Variables   map[string]any
	UpdateQuery func(prev any, subscriptionData any) any
	OnError     func(error)
}
