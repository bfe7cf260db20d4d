package ssr

import (
	"context"
	"testing"

	language "github.com/hanpama/watchquery/internal/language"
	observable "github.com/hanpama/watchquery/internal/observable"
)

type fakePending struct {
	done   chan struct{}
	ok     bool
	called int
}

func (f *fakePending) FetchData(ctx context.Context) (<-chan struct{}, bool) {
	f.called++
	if !f.ok {
		return nil, false
	}
	return f.done, true
}

func TestCanonicalKeyIsOrderIndependent(t *testing.T) {
	doc := language.MustParseQuery(`query Hero($a: Int, $b: Int) { hero(a: $a, b: $b) { id } }`)

	k1 := CanonicalKey(doc, map[string]any{"a": 1, "b": 2}, observable.FetchPolicyCacheFirst)
	k2 := CanonicalKey(doc, map[string]any{"b": 2, "a": 1}, observable.FetchPolicyCacheFirst)
	if k1 != k2 {
		t.Fatalf("keys differ for identical variables:\n%s\n%s", k1, k2)
	}

	k3 := CanonicalKey(doc, map[string]any{"a": 1, "b": 3}, observable.FetchPolicyCacheFirst)
	if k1 == k3 {
		t.Fatalf("keys collide for different variables: %s", k1)
	}

	k4 := CanonicalKey(doc, map[string]any{"a": 1, "b": 2}, observable.FetchPolicyNetworkOnly)
	if k1 == k4 {
		t.Fatalf("keys collide for different fetch policies: %s", k1)
	}
}

func TestObservableRegistry(t *testing.T) {
	p := NewRenderPass()
	q := &observable.MockQuery{}

	p.RegisterObservable("k", q)
	if got := p.ReusableObservable("k"); got != observable.Query(q) {
		t.Fatalf("expected registered observable back, got %v", got)
	}
	if got := p.ReusableObservable("other"); got != nil {
		t.Fatalf("expected nil for unknown key, got %v", got)
	}

	p.Release()
	if got := p.ReusableObservable("k"); got != nil {
		t.Fatalf("expected registry cleared after release, got %v", got)
	}
	p.RegisterObservable("k2", q)
	if got := p.ReusableObservable("k2"); got != nil {
		t.Fatal("registration after release must be a no-op")
	}
}

func TestWaitFetchesPendingAndMarksFetched(t *testing.T) {
	p := NewRenderPass()
	f := &fakePending{done: make(chan struct{}), ok: true}
	close(f.done)

	if p.RegisterPendingQuery("k", f) {
		t.Fatal("first registration must not report already fetched")
	}
	if !p.HasPending() {
		t.Fatal("expected a pending query")
	}
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if f.called != 1 {
		t.Fatalf("expected one fetch, got %d", f.called)
	}
	if p.HasPending() {
		t.Fatal("pending set must drain after wait")
	}
	if !p.RegisterPendingQuery("k", f) {
		t.Fatal("re-registration after fetch must report already fetched")
	}
}

func TestWaitMarksDecliningQueryFetched(t *testing.T) {
	p := NewRenderPass()
	f := &fakePending{ok: false}

	p.RegisterPendingQuery("k", f)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !p.RegisterPendingQuery("k", f) {
		t.Fatal("a declining query must not be re-collected forever")
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	p := NewRenderPass()
	f := &fakePending{done: make(chan struct{}), ok: true}
	p.RegisterPendingQuery("k", f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected context error from wait")
	}
}
