package watch

import (
	"testing"

	"github.com/vektah/gqlparser/v2/gqlerror"

	language "github.com/hanpama/watchquery/internal/language"
)

// mustParseQuery parses a GraphQL document and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// counter is a callback spy.
type counter struct{ n int }

func (c *counter) inc()       { c.n++ }
func (c *counter) count() int { return c.n }

// gqlErrors builds a server-side error list from plain messages.
func gqlErrors(messages ...string) gqlerror.List {
	var list gqlerror.List
	for _, m := range messages {
		list = append(list, &gqlerror.Error{Message: m})
	}
	return list
}
