package watch

import (
	"context"

	"github.com/google/go-cmp/cmp"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	graphql "github.com/hanpama/watchquery/internal/graphql"
	observable "github.com/hanpama/watchquery/internal/observable"
)

// startSubscription opens the push channel on the current observable. It is a
// no-op while skipped, unbound, or already subscribed.
func (d *QueryData) startSubscription(ctx context.Context) {
	if d.sub != nil || d.options.Skip || d.handle == nil {
		return
	}
	sub := d.handle.Subscribe(observable.Observer{
		OnNext:  func(state graphql.ObservableState) { d.onNext(state) },
		OnError: func(err error) { d.onError(ctx, err) },
	})
	if d.sub != nil {
		// An error replayed during Subscribe already forced a resubscribe;
		// the channel just opened is the stale one.
		sub.Unsubscribe()
		return
	}
	d.sub = sub
}

// stopSubscription closes the push channel. Idempotent.
func (d *QueryData) stopSubscription() {
	if d.sub == nil {
		return
	}
	d.sub.Unsubscribe()
	d.sub = nil
}

// onNext handles a pushed state. Pushes structurally identical to the
// previous snapshot are suppressed so cache-identity writes do not trigger
// redundant re-renders.
func (d *QueryData) onNext(state graphql.ObservableState) {
	d.observed()
	prev := d.previous.result
	if prev != nil &&
		prev.Loading == state.Loading &&
		prev.NetworkStatus == state.NetworkStatus &&
		cmp.Equal(prev.Data, state.Data) {
		return
	}
	d.notify()
}

// onError handles a pushed error. Only *graphql.QueryError belongs to the
// query's error channel; anything else is a defect in the observable
// collaborator and is re-raised rather than swallowed.
func (d *QueryData) onError(ctx context.Context, err error) {
	qe, ok := err.(*graphql.QueryError)
	if !ok {
		panic(err)
	}
	d.observed()
	d.resubscribe(ctx)
	wasLoading := d.previous.result != nil && d.previous.result.Loading
	if wasLoading || !qe.Equal(d.previous.err) {
		prev := d.previous
		prev.err = qe
		d.previous = prev
		eventbus.Publish(ctx, events.WatchError{Operation: d.operationName(), Err: qe})
		d.notify()
	}
}

// resubscribe tears the subscription down and reopens it. The handle caches
// its last error and would replay it into the fresh subscription,
// terminating it again; clearing the cached state before subscribing and
// restoring it afterwards breaks that loop while in-flight consumers of the
// handle still observe continuity.
func (d *QueryData) resubscribe(ctx context.Context) {
	d.stopSubscription()
	handle := d.handle
	if handle == nil {
		return
	}
	last := handle.LastState()
	lastErr := handle.LastError()
	handle.ResetLastState()
	d.startSubscription(ctx)
	handle.RestoreLastState(last, lastErr)
	eventbus.Publish(ctx, events.Resubscribe{Operation: d.operationName()})
}
