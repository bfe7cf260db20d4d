package watch

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	graphql "github.com/hanpama/watchquery/internal/graphql"
	language "github.com/hanpama/watchquery/internal/language"
	observable "github.com/hanpama/watchquery/internal/observable"
	ssr "github.com/hanpama/watchquery/internal/ssr"
	watchid "github.com/hanpama/watchquery/internal/watchid"
)

// QueryData mediates between one observable query and one rendering unit.
type QueryData struct {
	id                   string
	onNewData            func()
	renderPass           *ssr.RenderPass
	partialRefetchPolicy bool

	options Options
	client  observable.Client
	handle  observable.Query
	sub     observable.Subscription
	caps    *Capabilities

	previous previousState
	mounted  bool

	fetchDone chan struct{}
	fetchOnce sync.Once
}

// previousState is the depth-one snapshot history the mediator keeps between
// executes. It is replaced as a whole value on every transition so the
// invariants stay auditable; fields are never mutated in place across calls.
type previousState struct {
	client            observable.Client
	document          *language.QueryDocument
	observableOptions *observable.Options
	result            *Snapshot
	loading           bool
	options           *Options
	err               *graphql.QueryError
}

// Option configures a QueryData at construction time.
type Option func(*QueryData)

// WithRenderPass attaches the mediator to a server-render pass: observables
// are shared through the pass registry and results participate in
// render-blocking collection.
func WithRenderPass(p *ssr.RenderPass) Option {
	return func(d *QueryData) { d.renderPass = p }
}

// WithoutPartialRefetch disables the partial-result auto-refetch recovery for
// every query this mediator runs, regardless of per-query options.
func WithoutPartialRefetch() Option {
	return func(d *QueryData) { d.partialRefetchPolicy = false }
}

// New creates a mediator for the given options. onNewData is the rendering
// layer's re-render request; it is only invoked between AfterExecute and the
// matching unmount.
func New(options Options, onNewData func(), opts ...Option) *QueryData {
	d := &QueryData{
		id:                   watchid.New(),
		options:              options,
		onNewData:            onNewData,
		partialRefetchPolicy: true,
	}
	d.caps = &Capabilities{owner: d}
	for _, f := range opts {
		f(d)
	}
	return d
}

// ID returns the mediator's stable identity used for event correlation.
func (d *QueryData) ID() string { return d.id }

// SetOptions adopts a new option set. When the new set differs structurally
// from the current one, the old set is recorded first so later option-change
// detection has a stable baseline.
func (d *QueryData) SetOptions(opts Options) {
	if !d.options.Equal(opts) {
		recorded := d.options
		prev := d.previous
		prev.options = &recorded
		d.previous = prev
	}
	d.options = opts
}

// Execute binds or updates the observable query for the current options and
// returns the externally visible snapshot. It returns an InvariantError for
// configuration mistakes (nil client, non-query document); query failures
// surface through the snapshot's Error field instead.
func (d *QueryData) Execute(ctx context.Context, client observable.Client) (Snapshot, error) {
	if client == nil {
		return Snapshot{}, graphql.Invariantf("Execute requires a client")
	}
	ctx = watchid.WithID(ctx, d.id)
	d.refreshClient(client)

	if d.options.Skip || d.options.Document != d.previous.document {
		d.stopSubscription()
		d.tearDownObservable(!d.options.Skip)
		prev := d.previous
		prev.document = d.options.Document
		d.previous = prev
	}

	if err := d.bindObservable(ctx, client); err != nil {
		return Snapshot{}, err
	}

	if snap := d.serverRenderResult(ctx, client); snap != nil {
		return *snap, nil
	}
	return d.queryResult(ctx, client), nil
}

// AfterExecute marks the mediator mounted, opens the push subscription when
// no server-render bypass applies and fires lifecycle callbacks. It returns
// a teardown closure that marks the mediator unmounted.
func (d *QueryData) AfterExecute(ctx context.Context) func() {
	ctx = watchid.WithID(ctx, d.id)
	d.mounted = true
	if d.handle != nil && !d.serverRenderBypass() {
		d.startSubscription(ctx)
	}
	d.dispatchCallbacks()
	return func() { d.mounted = false }
}

// Cleanup stops the subscription, tears down the observable and clears the
// stored previous snapshot. Idempotent and safe before the first Execute.
func (d *QueryData) Cleanup() {
	ctx := watchid.WithID(context.Background(), d.id)
	hadResources := d.sub != nil || d.handle != nil
	d.stopSubscription()
	d.tearDownObservable(true)
	prev := d.previous
	prev.result = nil
	d.previous = prev
	if hadResources {
		eventbus.Publish(ctx, events.WatchStop{Operation: d.operationName()})
	}
}

// FetchData is the render-blocking collaborator's entry point. It reports
// ok=false when the query opted out (skip, ssr disabled); otherwise it starts
// the subscription and returns a channel closed once a value is observed.
func (d *QueryData) FetchData(ctx context.Context) (<-chan struct{}, bool) {
	if d.options.Skip || d.options.DisableSSR {
		return nil, false
	}
	if d.fetchDone == nil {
		d.fetchDone = make(chan struct{})
	}
	ctx = watchid.WithID(ctx, d.id)
	d.startSubscription(ctx)
	return d.fetchDone, true
}

// refreshClient records the executing client; a client change invalidates
// everything derived from the old one and forces a full rebind.
func (d *QueryData) refreshClient(client observable.Client) {
	if d.previous.client != nil && d.previous.client != client {
		d.stopSubscription()
		d.tearDownObservable(true)
		d.previous = previousState{}
	}
	d.client = client
	prev := d.previous
	prev.client = client
	d.previous = prev
}

// serverRenderResult returns the short-circuit snapshot for server-render
// execution, or nil when the normal result path applies.
func (d *QueryData) serverRenderResult(ctx context.Context, client observable.Client) *Snapshot {
	if d.options.Skip {
		return nil
	}
	if d.options.DisableSSR && (d.renderPass != nil || client.DisableNetworkFetches()) {
		snap := d.loadingSnapshot(client)
		return &snap
	}
	if d.renderPass == nil {
		return nil
	}
	if d.renderPass.RegisterPendingQuery(d.registryKey(), d) {
		snap := d.queryResult(ctx, client)
		return &snap
	}
	snap := d.loadingSnapshot(client)
	return &snap
}

// serverRenderBypass reports whether subscription start is suppressed: the
// render-blocking pass performs no client-side subscriptions, and a query
// excluded from SSR on a fetch-disabled client never settled.
func (d *QueryData) serverRenderBypass() bool {
	if d.renderPass != nil {
		return true
	}
	return d.options.DisableSSR && d.client != nil && d.client.DisableNetworkFetches()
}

// observed closes the render-blocking settle signal, once.
func (d *QueryData) observed() {
	if d.fetchDone == nil {
		return
	}
	d.fetchOnce.Do(func() { close(d.fetchDone) })
}

// notify requests a re-render. Pushes arriving after unmount are dropped.
func (d *QueryData) notify() {
	if !d.mounted || d.onNewData == nil {
		return
	}
	d.onNewData()
}

func (d *QueryData) operationName() string {
	return language.OperationName(d.options.Document)
}
