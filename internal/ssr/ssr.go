// Package ssr implements the render-blocking pass used for server rendering:
// a pass-scoped registry that shares one observable query across rendering
// units requesting the identical document+variables, and collects pending
// queries so the host can wait for them before completing the pass.
package ssr

import (
	"context"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/vektah/gqlparser/v2/formatter"

	language "github.com/hanpama/watchquery/internal/language"
	observable "github.com/hanpama/watchquery/internal/observable"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PendingQuery is a mediator registered with a render pass. FetchData starts
// the query's subscription and returns a channel closed once a value has been
// observed, or ok=false when the query opted out of server rendering.
type PendingQuery interface {
	FetchData(ctx context.Context) (done <-chan struct{}, ok bool)
}

// CanonicalKey serializes (document, variables, policy) into a stable
// registry key: identical queries from different rendering units map to the
// same entry regardless of variable map ordering.
func CanonicalKey(doc *language.QueryDocument, variables map[string]any, policy observable.FetchPolicy) string {
	var sb strings.Builder
	if doc != nil {
		formatter.NewFormatter(&sb).FormatQueryDocument(doc)
	}
	payload, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
		Policy    string         `json:"policy,omitempty"`
	}{Query: sb.String(), Variables: variables, Policy: string(policy)})
	if err != nil {
		// Variables that cannot be serialized still need a usable key;
		// fall back to the document text alone.
		return sb.String()
	}
	return string(payload)
}

// RenderPass is the registry for one server-render pass. The host alternates
// rendering (which registers pending queries) with Wait until HasPending
// reports false, then calls Release.
type RenderPass struct {
	mu          sync.Mutex
	observables map[string]observable.Query
	pending     map[string]PendingQuery
	fetched     map[string]struct{}
	released    bool
}

// NewRenderPass creates an empty render pass.
func NewRenderPass() *RenderPass {
	return &RenderPass{
		observables: make(map[string]observable.Query),
		pending:     make(map[string]PendingQuery),
		fetched:     make(map[string]struct{}),
	}
}

// RegisterObservable records q for reuse by other rendering units requesting
// the same key during this pass.
func (p *RenderPass) RegisterObservable(key string, q observable.Query) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.observables[key] = q
}

// ReusableObservable returns a previously registered observable for key, or
// nil.
func (p *RenderPass) ReusableObservable(key string) observable.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.observables[key]
}

// RegisterPendingQuery records q to be fetched by the next Wait and reports
// whether the key's data was already fetched during an earlier cycle of this
// pass. When it was, the caller should compute and return its real result
// instead of a loading placeholder.
func (p *RenderPass) RegisterPendingQuery(key string, q PendingQuery) (alreadyFetched bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.fetched[key]; ok {
		return true
	}
	if !p.released {
		p.pending[key] = q
	}
	return false
}

// HasPending reports whether queries registered since the last Wait remain.
func (p *RenderPass) HasPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending) > 0
}

// Wait fetches every currently pending query and blocks until each has
// observed a value or ctx is done. Queries that decline to fetch (skip, ssr
// disabled) are marked fetched so they are not re-registered forever.
func (p *RenderPass) Wait(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]PendingQuery)
	p.mu.Unlock()

	for key, q := range batch {
		done, ok := q.FetchData(ctx)
		if ok && done != nil {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		p.mu.Lock()
		p.fetched[key] = struct{}{}
		p.mu.Unlock()
	}
	return nil
}

// Release ends the pass: registered observables are dropped and ownership
// reverts to single-owner semantics. Further registration is a no-op.
func (p *RenderPass) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
	p.observables = make(map[string]observable.Query)
	p.pending = make(map[string]PendingQuery)
}
