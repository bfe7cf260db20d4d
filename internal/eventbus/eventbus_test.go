package eventbus

import (
	"context"
	"testing"
)

type testEvent struct {
	N int
}

type otherEvent struct{}

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(ctx context.Context, e testEvent) {
		got = append(got, e.N)
	})

	Publish(context.Background(), testEvent{N: 1})
	Publish(context.Background(), otherEvent{})
	Publish(context.Background(), testEvent{N: 2})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries: %v", got)
	}

	unsub()
	Publish(context.Background(), testEvent{N: 3})
	if len(got) != 2 {
		t.Fatalf("delivery after unsubscribe: %v", got)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	Use(New())
	defer Use(nil)

	a, b := 0, 0
	defer Subscribe(func(ctx context.Context, e testEvent) { a++ })()
	defer Subscribe(func(ctx context.Context, e testEvent) { b++ })()

	Publish(context.Background(), testEvent{})
	if a != 1 || b != 1 {
		t.Fatalf("expected both subscribers to fire, got %d/%d", a, b)
	}
}

func TestNoBusInstalled(t *testing.T) {
	Use(nil)

	unsub := Subscribe(func(ctx context.Context, e testEvent) {
		t.Fatal("handler fired without a bus")
	})
	Publish(context.Background(), testEvent{})
	unsub()
}
