package watch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/watchquery/internal/eventbus"
	events "github.com/hanpama/watchquery/internal/events"
	observable "github.com/hanpama/watchquery/internal/observable"
)

func TestLifecycleEventsPublished(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var starts []events.WatchStart
	var results []events.WatchResult
	stops := 0
	defer eventbus.Subscribe(func(ctx context.Context, e events.WatchStart) {
		starts = append(starts, e)
	})()
	defer eventbus.Subscribe(func(ctx context.Context, e events.WatchResult) {
		results = append(results, e)
	})()
	defer eventbus.Subscribe(func(ctx context.Context, e events.WatchStop) { stops++ })()

	doc := mustParseQuery(t, `query Hero { hero { id } }`)
	client := observable.NewMockClient()
	d := New(Options{Document: doc}, func() {})

	_, err := d.Execute(context.Background(), client)
	require.NoError(t, err)
	client.LastQuery().Resolve(map[string]any{"hero": map[string]any{"id": 1}})
	_, err = d.Execute(context.Background(), client)
	require.NoError(t, err)
	d.Cleanup()

	require.Len(t, starts, 1)
	assert.Equal(t, "Hero", starts[0].Operation)
	require.Len(t, results, 2)
	assert.True(t, results[0].Loading)
	assert.False(t, results[1].Loading)
	assert.True(t, results[1].HasData)
	assert.Equal(t, 1, stops)
}
