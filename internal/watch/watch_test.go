package watch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphql "github.com/hanpama/watchquery/internal/graphql"
	observable "github.com/hanpama/watchquery/internal/observable"
)

func TestExecuteRequiresClient(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	d := New(Options{Document: doc}, nil)
	_, err := d.Execute(context.Background(), nil)
	var inv *graphql.InvariantError
	require.ErrorAs(t, err, &inv)
}

func TestCacheFirstLoadingThenSettled(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id name } }`)
	client := observable.NewMockClient()
	d := New(Options{Document: doc, FetchPolicy: observable.FetchPolicyCacheFirst}, func() {})

	snap, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.Data)
	assert.True(t, snap.Called)
	assert.Equal(t, graphql.NetworkStatusLoading, snap.NetworkStatus)

	unmount := d.AfterExecute(context.Background())
	defer unmount()

	data := map[string]any{"hero": map[string]any{"id": 1, "name": "x"}}
	client.LastQuery().Resolve(data)

	snap, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	assert.False(t, snap.Loading)
	assert.Equal(t, data, snap.Data)
	assert.True(t, snap.Called)
	assert.Equal(t, graphql.NetworkStatusReady, snap.NetworkStatus)
}

func TestDocumentChangeTearsDownBeforeRebind(t *testing.T) {
	doc1 := mustParseQuery(t, `query One { a { id } }`)
	doc2 := mustParseQuery(t, `query Two { b { id } }`)
	client := observable.NewMockClient()
	notify := &counter{}
	d := New(Options{Document: doc1}, notify.inc)

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	unmount := d.AfterExecute(context.Background())
	defer unmount()

	q1 := client.LastQuery()
	require.Equal(t, 1, q1.SubscriberCount())

	d.SetOptions(Options{Document: doc2})
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)

	assert.True(t, q1.TornDown())
	assert.Equal(t, 0, q1.SubscriberCount())
	assert.Equal(t, 2, client.WatchQueryCalls())

	// A stale push from the old query must not reach the mediator.
	before := notify.count()
	q1.Resolve(map[string]any{"a": map[string]any{"id": 9}})
	assert.Equal(t, before, notify.count())
}

func TestClientChangeForcesFullRebind(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	client1 := observable.NewMockClient()
	client2 := observable.NewMockClient()
	d := New(Options{Document: doc}, func() {})

	_, err := d.Execute(context.Background(), client1)
	require.NoError(t, err)
	q1 := client1.LastQuery()
	q1.Resolve(map[string]any{"hero": map[string]any{"id": 1}})
	_, err = d.Execute(context.Background(), client1)
	require.NoError(t, err)

	snap, err := d.Execute(context.Background(), client2)
	require.NoError(t, err)
	assert.True(t, q1.TornDown())
	assert.Equal(t, 1, client2.WatchQueryCalls())
	assert.True(t, snap.Client == observable.Client(client2))
	// The old client's snapshot history does not leak across.
	assert.Nil(t, snap.PreviousData)
}

func TestCleanupIsIdempotent(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	client := observable.NewMockClient()
	d := New(Options{Document: doc}, func() {})

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	q := client.LastQuery()

	d.Cleanup()
	assert.True(t, q.TornDown())
	assert.Equal(t, 0, q.SubscriberCount())

	d.Cleanup()
	assert.True(t, q.TornDown())
	assert.Equal(t, 0, q.SubscriberCount())
	assert.Equal(t, 1, client.WatchQueryCalls())
}

func TestCleanupBeforeExecuteIsSafe(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	d := New(Options{Document: doc}, func() {})
	d.Cleanup()
	d.Cleanup()
}

func TestOnCompletedFiresOncePerSettle(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	client := observable.NewMockClient()
	completed := &counter{}
	opts := Options{Document: doc, OnCompleted: func(data any) { completed.inc() }}
	d := New(opts, func() {})

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	assert.Equal(t, 0, completed.count(), "loading result must not complete")

	client.LastQuery().Resolve(map[string]any{"hero": map[string]any{"id": 1}})
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	assert.Equal(t, 1, completed.count())

	// Incidental re-render with unchanged options after settling.
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	assert.Equal(t, 1, completed.count())
}

func TestOnErrorCallback(t *testing.T) {
	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	client := observable.NewMockClient()
	var got *graphql.QueryError
	d := New(Options{Document: doc, OnError: func(err *graphql.QueryError) { got = err }}, func() {})

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())

	client.LastQuery().PushError(&graphql.QueryError{
		GraphQLErrors: gqlErrors("boom"),
	})
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, "boom", got.Error())
}

func TestVariableChangeRefiresOnCompleted(t *testing.T) {
	doc := mustParseQuery(t, `query Hero($id: ID!) { hero(id: $id) { id } }`)
	client := observable.NewMockClient()
	completed := &counter{}
	base := Options{
		Document:    doc,
		Variables:   map[string]any{"id": 1},
		OnCompleted: func(data any) { completed.inc() },
	}
	d := New(base, func() {})

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	client.LastQuery().Resolve(map[string]any{"hero": map[string]any{"id": 1}})
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	require.Equal(t, 1, completed.count())

	next := base
	next.Variables = map[string]any{"id": 2}
	d.SetOptions(next)
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.AfterExecute(context.Background())
	assert.Equal(t, 2, completed.count())
}
