package watch

import (
	"time"

	"github.com/google/go-cmp/cmp"

	graphql "github.com/hanpama/watchquery/internal/graphql"
	language "github.com/hanpama/watchquery/internal/language"
	observable "github.com/hanpama/watchquery/internal/observable"
)

// Options configures a single watched query. A value is immutable once handed
// to the mediator; option changes go through QueryData.SetOptions with a new
// value.
type Options struct {
	Document     *language.QueryDocument
	Variables    map[string]any
	FetchPolicy  observable.FetchPolicy
	ErrorPolicy  observable.ErrorPolicy
	PollInterval time.Duration

	// Skip suppresses fetching entirely. Execute still returns a well-formed
	// "ready, nothing to show" snapshot.
	Skip bool

	// DisableSSR excludes this query from server rendering: during a
	// render-blocking pass it resolves to a loading placeholder instead of
	// being fetched.
	DisableSSR bool

	// PartialRefetch opts this query into the partial-result auto-refetch
	// recovery. It only takes effect while the mediator-level policy is
	// enabled.
	PartialRefetch bool

	// NotifyOnStatusChange requests pushes for network-status transitions
	// even when data is unchanged.
	NotifyOnStatusChange bool

	// Context is an opaque payload forwarded to the transport. Excluded from
	// equality.
	Context map[string]any

	// OnCompleted fires once per settled, error-free result.
	OnCompleted func(data any)
	// OnError fires once per settled error.
	OnError func(err *graphql.QueryError)
}

// Equal reports deep structural equality of two option sets. The opaque
// Context payload and the callbacks are not comparable and are excluded.
func (o Options) Equal(other Options) bool {
	return o.Document == other.Document &&
		o.FetchPolicy == other.FetchPolicy &&
		o.ErrorPolicy == other.ErrorPolicy &&
		o.PollInterval == other.PollInterval &&
		o.Skip == other.Skip &&
		o.DisableSSR == other.DisableSSR &&
		o.PartialRefetch == other.PartialRefetch &&
		o.NotifyOnStatusChange == other.NotifyOnStatusChange &&
		cmp.Equal(o.Variables, other.Variables)
}

// observableOptionsEqual diffs two prepared observable option sets, ignoring
// the opaque context payload. Documents are compared by identity: a reparsed
// document is a different query binding.
func observableOptionsEqual(a, b observable.Options) bool {
	return a.Document == b.Document &&
		a.FetchPolicy == b.FetchPolicy &&
		a.ErrorPolicy == b.ErrorPolicy &&
		a.PollInterval == b.PollInterval &&
		a.NotifyOnStatusChange == b.NotifyOnStatusChange &&
		cmp.Equal(a.Variables, b.Variables)
}
