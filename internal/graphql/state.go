package graphql

import "github.com/vektah/gqlparser/v2/gqlerror"

// ObservableState is the raw value read off an observable query handle: the
// cache engine's current view of a single query, before the mediator applies
// skip semantics, previous-data continuity, or error recovery.
type ObservableState struct {
	Data          any
	Loading       bool
	NetworkStatus NetworkStatus
	// Partial is set when the cache could not fully satisfy the query's
	// requested fields.
	Partial bool
	Errors  gqlerror.List
}
