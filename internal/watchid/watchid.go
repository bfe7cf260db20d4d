package watchid

import (
	"context"

	"github.com/google/uuid"
)

// key is the context key for the watch ID.
type key struct{}

// New generates a fresh watch ID. Each mediator instance gets one ID for the
// whole of its lifetime so events from the same watch can be correlated.
func New() string {
	return uuid.NewString()
}

// NewContext returns a copy of parent with a fresh watch ID stored, along
// with the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := New()
	return context.WithValue(parent, key{}, id), id
}

// WithID returns a copy of parent carrying the given watch ID.
func WithID(parent context.Context, id string) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the watch ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(key{})
	id, ok := v.(string)
	return id, ok
}
