package watch

import (
	"context"
	"time"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	graphql "github.com/hanpama/watchquery/internal/graphql"
	observable "github.com/hanpama/watchquery/internal/observable"
)

// Snapshot is the externally visible result of a watched query at one point
// in time. A snapshot is immutable once returned; the mediator keeps the
// previous one to compute PreviousData and to suppress duplicate pushes.
type Snapshot struct {
	Data          any
	Loading       bool
	NetworkStatus graphql.NetworkStatus
	Error         *graphql.QueryError
	Called        bool

	// PreviousData carries the last non-empty data across loading and error
	// gaps, surviving multiple consecutive empty results.
	PreviousData any

	Client    observable.Client
	Variables map[string]any

	// Query forwards imperative operations to whatever observable the
	// mediator currently owns.
	Query *Capabilities
}

// Capabilities forwards refetch/fetchMore/polling calls through the mediator
// to its current observable. Snapshots hold this indirection rather than
// bound handles so a rebind does not strand older snapshots.
type Capabilities struct {
	owner *QueryData
}

func (c *Capabilities) Refetch(ctx context.Context, variables map[string]any) error {
	if h := c.owner.handle; h != nil {
		return h.Refetch(ctx, variables)
	}
	return graphql.Invariantf("query has no active observable")
}

func (c *Capabilities) FetchMore(ctx context.Context, opts observable.FetchMoreOptions) error {
	if h := c.owner.handle; h != nil {
		return h.FetchMore(ctx, opts)
	}
	return graphql.Invariantf("query has no active observable")
}

func (c *Capabilities) UpdateQuery(fn func(prev any, variables map[string]any) any) {
	if h := c.owner.handle; h != nil {
		h.UpdateQuery(fn)
	}
}

func (c *Capabilities) StartPolling(interval time.Duration) {
	if h := c.owner.handle; h != nil {
		h.StartPolling(interval)
	}
}

func (c *Capabilities) StopPolling() {
	if h := c.owner.handle; h != nil {
		h.StopPolling()
	}
}

func (c *Capabilities) SubscribeToMore(opts observable.SubscribeToMoreOptions) (cancel func()) {
	if h := c.owner.handle; h != nil {
		return h.SubscribeToMore(opts)
	}
	return func() {}
}

// queryResult synthesizes the snapshot from the observable's current state
// plus the previous snapshot, then persists it as the new previous state.
func (d *QueryData) queryResult(ctx context.Context, client observable.Client) Snapshot {
	snap := Snapshot{
		Called:    true,
		Client:    client,
		Variables: d.variables(),
		Query:     d.caps,
	}

	switch {
	case d.options.Skip:
		// Skipping suppresses fetching but still yields a well-formed
		// "ready, nothing to show" result.
		snap.NetworkStatus = graphql.NetworkStatusReady

	case d.handle != nil:
		state := d.handle.CurrentState()
		snap.Data = state.Data
		snap.Loading = state.Loading
		snap.NetworkStatus = state.NetworkStatus
		snap.Error = graphql.ErrorFrom(state.Errors)

		switch {
		case state.Loading:
		case snap.Error != nil:
			// A transient error must not blank out previously good data.
			snap.Data = nil
			if last := d.handle.LastState(); last != nil {
				snap.Data = last.Data
			}
		case d.shouldPartialRefetch(state):
			// A mutation writing a narrower shape can strand the cache entry
			// with an empty partial read; force a reload instead of
			// surfacing an empty settled result.
			snap.Loading = true
			snap.NetworkStatus = graphql.NetworkStatusLoading
			_ = d.handle.Refetch(ctx, nil)
			return snap
		}

	default:
		snap.Loading = true
		snap.NetworkStatus = graphql.NetworkStatusLoading
	}

	prior := d.previous.result
	if prior != nil {
		if !isEmptyData(prior.Data) {
			snap.PreviousData = prior.Data
		} else {
			snap.PreviousData = prior.PreviousData
		}
	}

	if d.handle != nil {
		// Errors surfaced in this snapshot must not resurface on a later
		// error-free pass.
		d.handle.ResetStoreErrors()
	}

	persisted := snap
	prev := d.previous
	prev.result = &persisted
	prev.loading = prior != nil && prior.Loading
	d.previous = prev

	eventbus.Publish(ctx, events.WatchResult{
		Operation:     d.operationName(),
		Loading:       snap.Loading,
		NetworkStatus: snap.NetworkStatus.String(),
		HasData:       !isEmptyData(snap.Data),
	})
	return snap
}

// loadingSnapshot is the placeholder returned when a server-render
// short-circuit applies.
func (d *QueryData) loadingSnapshot(client observable.Client) Snapshot {
	return Snapshot{
		Loading:       true,
		NetworkStatus: graphql.NetworkStatusLoading,
		Called:        true,
		Client:        client,
		Variables:     d.variables(),
		Query:         d.caps,
	}
}

func (d *QueryData) shouldPartialRefetch(state graphql.ObservableState) bool {
	return d.partialRefetchPolicy &&
		d.options.PartialRefetch &&
		state.Partial &&
		isEmptyData(state.Data) &&
		d.options.FetchPolicy != observable.FetchPolicyCacheOnly
}

func (d *QueryData) variables() map[string]any {
	if d.handle != nil {
		return d.handle.Variables()
	}
	return d.options.Variables
}

// isEmptyData treats nil and an empty response object as "nothing to show".
func isEmptyData(data any) bool {
	if data == nil {
		return true
	}
	if m, ok := data.(map[string]any); ok {
		return len(m) == 0
	}
	return false
}
