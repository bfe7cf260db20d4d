package watch

import (
	"context"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	language "github.com/hanpama/watchquery/internal/language"
	observable "github.com/hanpama/watchquery/internal/observable"
	ssr "github.com/hanpama/watchquery/internal/ssr"
)

// prepareObservableOptions merges the watch options into the shape the cache
// engine expects. During a render-blocking pass, policies that force a
// network round-trip are downgraded to cache-first: the server performs no
// real fetch, so they could never settle.
func (d *QueryData) prepareObservableOptions() (observable.Options, error) {
	if err := language.VerifyOperationType(d.options.Document, language.Query); err != nil {
		return observable.Options{}, err
	}
	fetchPolicy := d.options.FetchPolicy
	if d.renderPass != nil &&
		(fetchPolicy == observable.FetchPolicyNetworkOnly ||
			fetchPolicy == observable.FetchPolicyCacheAndNetwork) {
		fetchPolicy = observable.FetchPolicyCacheFirst
	}
	return observable.Options{
		Document:             d.options.Document,
		Variables:            d.options.Variables,
		FetchPolicy:          fetchPolicy,
		ErrorPolicy:          d.options.ErrorPolicy,
		PollInterval:         d.options.PollInterval,
		NotifyOnStatusChange: d.options.NotifyOnStatusChange,
		Context:              d.options.Context,
	}, nil
}

// bindObservable ensures the mediator owns an observable matching the current
// options: reuse from the render-pass registry, create on first need, or diff
// the prepared options against the last-applied set and propagate changes.
func (d *QueryData) bindObservable(ctx context.Context, client observable.Client) error {
	prepared, err := d.prepareObservableOptions()
	if err != nil {
		return err
	}

	if d.handle == nil {
		if d.options.Skip {
			// Skipped and never initialized: no handle until skip clears.
			d.recordObservableOptions(&prepared)
			return nil
		}
		if d.renderPass != nil {
			key := ssr.CanonicalKey(prepared.Document, prepared.Variables, prepared.FetchPolicy)
			if q := d.renderPass.ReusableObservable(key); q != nil {
				d.handle = q
				d.recordObservableOptions(&prepared)
				eventbus.Publish(ctx, events.SSRReuse{Key: key, Operation: d.operationName()})
				eventbus.Publish(ctx, events.WatchStart{
					Operation:   d.operationName(),
					FetchPolicy: string(prepared.FetchPolicy),
					Reused:      true,
				})
				return nil
			}
		}

		q, err := client.WatchQuery(ctx, prepared)
		if err != nil {
			return err
		}
		d.handle = q
		d.recordObservableOptions(&prepared)
		if d.renderPass != nil && !d.options.DisableSSR {
			key := ssr.CanonicalKey(prepared.Document, prepared.Variables, prepared.FetchPolicy)
			d.renderPass.RegisterObservable(key, q)
			eventbus.Publish(ctx, events.SSRRegister{Key: key, Operation: d.operationName()})
		}
		eventbus.Publish(ctx, events.WatchStart{
			Operation:   d.operationName(),
			FetchPolicy: string(prepared.FetchPolicy),
		})
		return nil
	}

	if d.options.Skip {
		// Record without propagating: no network work while skipped.
		d.recordObservableOptions(&prepared)
		return nil
	}
	if d.previous.observableOptions == nil ||
		!observableOptionsEqual(prepared, *d.previous.observableOptions) {
		d.recordObservableOptions(&prepared)
		// Rejections surface through the normal result channel, not here.
		_ = d.handle.SetOptions(ctx, prepared)
	}
	return nil
}

func (d *QueryData) recordObservableOptions(opts *observable.Options) {
	prev := d.previous
	prev.observableOptions = opts
	d.previous = prev
}

// tearDownObservable stops the observable; when discard is set the handle is
// dropped entirely so the next bind creates a fresh one. A skipped query
// keeps its handle paused instead, ready to be revived by an option update.
func (d *QueryData) tearDownObservable(discard bool) {
	if d.handle == nil {
		return
	}
	d.handle.TearDown()
	if discard {
		d.handle = nil
		d.recordObservableOptions(nil)
	}
}

// registryKey is the canonical render-pass registry key for the current
// prepared options.
func (d *QueryData) registryKey() string {
	if o := d.previous.observableOptions; o != nil {
		return ssr.CanonicalKey(o.Document, o.Variables, o.FetchPolicy)
	}
	return ssr.CanonicalKey(d.options.Document, d.options.Variables, d.options.FetchPolicy)
}
