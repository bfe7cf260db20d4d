package observable

import (
	"time"

	language "github.com/hanpama/watchquery/internal/language"
)

// FetchPolicy governs whether a query reads cache, network, or both, and in
// what order.
type FetchPolicy string

const (
	// FetchPolicyCacheFirst returns cached data when complete, hitting the
	// network only on a miss. The default.
	FetchPolicyCacheFirst FetchPolicy = "cache-first"
	// FetchPolicyNetworkOnly always fetches from the network, writing the
	// result into the cache.
	FetchPolicyNetworkOnly FetchPolicy = "network-only"
	// FetchPolicyCacheOnly never hits the network.
	FetchPolicyCacheOnly FetchPolicy = "cache-only"
	// FetchPolicyNoCache fetches from the network without writing the cache.
	FetchPolicyNoCache FetchPolicy = "no-cache"
	// FetchPolicyCacheAndNetwork returns cached data immediately and also
	// fetches from the network.
	FetchPolicyCacheAndNetwork FetchPolicy = "cache-and-network"
	// FetchPolicyStandby holds the query idle until options change.
	FetchPolicyStandby FetchPolicy = "standby"
)

// ErrorPolicy governs how GraphQL errors interact with returned data.
type ErrorPolicy string

const (
	// ErrorPolicyNone discards data when any error is present. The default.
	ErrorPolicyNone ErrorPolicy = "none"
	// ErrorPolicyIgnore drops errors and keeps whatever data arrived.
	ErrorPolicyIgnore ErrorPolicy = "ignore"
	// ErrorPolicyAll surfaces both data and errors.
	ErrorPolicyAll ErrorPolicy = "all"
)

// Options is the shape the cache engine expects when creating or updating an
// observable query.
type Options struct {
	Document     *language.QueryDocument
	Variables    map[string]any
	FetchPolicy  FetchPolicy
	ErrorPolicy  ErrorPolicy
	PollInterval time.Duration

	// NotifyOnStatusChange requests a push for network-status transitions
	// even when data is unchanged.
	NotifyOnStatusChange bool

	// Context is an opaque payload forwarded to the transport. It is never
	// compared for equality.
	Context map[string]any
}
