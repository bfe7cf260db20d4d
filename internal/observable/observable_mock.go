package observable

import (
	"context"
	"sync"
	"time"

	graphql "github.com/hanpama/watchquery/internal/graphql"
)

// MockClient implements Client against fully in-memory MockQuery instances.
// Tests drive result delivery explicitly via MockQuery.Push and PushError.
type MockClient struct {
	mu              sync.Mutex
	queries         []*MockQuery
	disableFetches  bool
	initialState    *graphql.ObservableState
	watchQueryCalls int
}

// NewMockClient creates a MockClient whose queries start in the loading state.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// SetDisableNetworkFetches configures the client's server-render fetch gate.
func (c *MockClient) SetDisableNetworkFetches(disable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableFetches = disable
}

// SetInitialState overrides the state newly created queries start in.
func (c *MockClient) SetInitialState(state graphql.ObservableState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialState = &state
}

func (c *MockClient) WatchQuery(ctx context.Context, opts Options) (Query, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchQueryCalls++
	state := graphql.ObservableState{Loading: true, NetworkStatus: graphql.NetworkStatusLoading}
	if c.initialState != nil {
		state = *c.initialState
	}
	q := &MockQuery{opts: opts, state: state}
	c.queries = append(c.queries, q)
	return q, nil
}

func (c *MockClient) DisableNetworkFetches() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disableFetches
}

// Queries returns every query created so far, in creation order.
func (c *MockClient) Queries() []*MockQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*MockQuery, len(c.queries))
	copy(out, c.queries)
	return out
}

// LastQuery returns the most recently created query, or nil.
func (c *MockClient) LastQuery() *MockQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queries) == 0 {
		return nil
	}
	return c.queries[len(c.queries)-1]
}

// WatchQueryCalls returns how many observable queries the client created.
func (c *MockClient) WatchQueryCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watchQueryCalls
}

// MockQuery implements Query with an explicit push API and a call log.
// Like a real cache-backed observable it caches its last settled state and
// replays a cached error to any new subscriber.
type MockQuery struct {
	mu        sync.Mutex
	opts      Options
	state     graphql.ObservableState
	lastState *graphql.ObservableState
	lastErr   *graphql.QueryError
	subs      []*mockSubscription

	setOptionsCalls []Options
	setOptionsErr   error
	refetchCalls    []map[string]any
	resetLastCalls  int
	resetStoreCalls int
	pollingInterval time.Duration
	tornDown        bool
}

type mockSubscription struct {
	q      *MockQuery
	obs    Observer
	closed bool
}

func (s *mockSubscription) Unsubscribe() {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for i, sub := range s.q.subs {
		if sub == s {
			s.q.subs = append(s.q.subs[:i], s.q.subs[i+1:]...)
			break
		}
	}
}

func (q *MockQuery) Subscribe(obs Observer) Subscription {
	q.mu.Lock()
	sub := &mockSubscription{q: q, obs: obs}
	q.subs = append(q.subs, sub)
	q.tornDown = false
	replay := q.lastErr
	q.mu.Unlock()
	if replay != nil && obs.OnError != nil {
		obs.OnError(replay)
	}
	return sub
}

func (q *MockQuery) SetOptions(ctx context.Context, opts Options) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setOptionsCalls = append(q.setOptionsCalls, opts)
	if q.setOptionsErr != nil {
		return q.setOptionsErr
	}
	q.opts = opts
	return nil
}

func (q *MockQuery) CurrentState() graphql.ObservableState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *MockQuery) LastState() *graphql.ObservableState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastState
}

func (q *MockQuery) LastError() *graphql.QueryError {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

func (q *MockQuery) ResetLastState() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetLastCalls++
	q.lastState = nil
	q.lastErr = nil
}

func (q *MockQuery) RestoreLastState(last *graphql.ObservableState, lastErr *graphql.QueryError) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastState = last
	q.lastErr = lastErr
}

func (q *MockQuery) ResetStoreErrors() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetStoreCalls++
	q.state.Errors = nil
}

func (q *MockQuery) Variables() map[string]any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.opts.Variables
}

func (q *MockQuery) Refetch(ctx context.Context, variables map[string]any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refetchCalls = append(q.refetchCalls, variables)
	q.state.Loading = true
	q.state.NetworkStatus = graphql.NetworkStatusRefetch
	return nil
}

func (q *MockQuery) FetchMore(ctx context.Context, opts FetchMoreOptions) error { return nil }

func (q *MockQuery) UpdateQuery(fn func(prev any, variables map[string]any) any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Data = fn(q.state.Data, q.opts.Variables)
}

func (q *MockQuery) StartPolling(interval time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pollingInterval = interval
}

func (q *MockQuery) StopPolling() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pollingInterval = 0
}

func (q *MockQuery) SubscribeToMore(opts SubscribeToMoreOptions) (cancel func()) {
	return func() {}
}

func (q *MockQuery) TearDown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tornDown = true
	q.subs = nil
}

// Push sets the query's current state, records it as the last settled state
// when not loading, and notifies every subscriber.
func (q *MockQuery) Push(state graphql.ObservableState) {
	q.mu.Lock()
	q.state = state
	if !state.Loading {
		copied := state
		q.lastState = &copied
	}
	subs := append([]*mockSubscription(nil), q.subs...)
	q.mu.Unlock()
	for _, sub := range subs {
		if sub.obs.OnNext != nil {
			sub.obs.OnNext(state)
		}
	}
}

// PushError records err as the last error when it is a *graphql.QueryError
// and notifies every subscriber's error callback.
func (q *MockQuery) PushError(err error) {
	q.mu.Lock()
	if qe, ok := err.(*graphql.QueryError); ok {
		q.lastErr = qe
		q.state.NetworkStatus = graphql.NetworkStatusError
		q.state.Loading = false
		q.state.Errors = qe.GraphQLErrors
	}
	subs := append([]*mockSubscription(nil), q.subs...)
	q.mu.Unlock()
	for _, sub := range subs {
		if sub.obs.OnError != nil {
			sub.obs.OnError(err)
		}
	}
}

// Resolve is shorthand for pushing a settled, error-free state carrying data.
func (q *MockQuery) Resolve(data any) {
	q.Push(graphql.ObservableState{
		Data:          data,
		Loading:       false,
		NetworkStatus: graphql.NetworkStatusReady,
	})
}

// SetOptionsError makes subsequent SetOptions calls fail with err.
func (q *MockQuery) SetOptionsError(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setOptionsErr = err
}

// SetOptionsCalls returns a copy of the recorded SetOptions payloads.
func (q *MockQuery) SetOptionsCalls() []Options {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Options, len(q.setOptionsCalls))
	copy(out, q.setOptionsCalls)
	return out
}

// RefetchCalls returns a copy of the recorded refetch variable sets.
func (q *MockQuery) RefetchCalls() []map[string]any {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]map[string]any, len(q.refetchCalls))
	copy(out, q.refetchCalls)
	return out
}

// SubscriberCount returns the number of open subscriptions.
func (q *MockQuery) SubscriberCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs)
}

// TornDown reports whether TearDown was called.
func (q *MockQuery) TornDown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tornDown
}

// PollingInterval returns the current polling interval, 0 when not polling.
func (q *MockQuery) PollingInterval() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pollingInterval
}

// Options returns the options the query is currently bound to.
func (q *MockQuery) Options() Options {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.opts
}
