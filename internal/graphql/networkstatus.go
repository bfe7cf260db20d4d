package graphql

// NetworkStatus is the enumerated phase of a watched query's execution.
// Values match the wire-level numbering used by cache engines and are
// passed through verbatim, never reinterpreted by the mediator.
type NetworkStatus int

const (
	// NetworkStatusLoading means the query has never returned a result yet.
	NetworkStatusLoading NetworkStatus = 1
	// NetworkStatusSetVariables means the query's variables changed and a
	// network request is in flight.
	NetworkStatusSetVariables NetworkStatus = 2
	// NetworkStatusFetchMore means a fetchMore request is in flight.
	NetworkStatusFetchMore NetworkStatus = 3
	// NetworkStatusRefetch means a refetch request is in flight.
	NetworkStatusRefetch NetworkStatus = 4
	// NetworkStatusPoll means a polling request is in flight.
	NetworkStatusPoll NetworkStatus = 6
	// NetworkStatusReady means no request is in flight and no error occurred.
	NetworkStatusReady NetworkStatus = 7
	// NetworkStatusError means no request is in flight and the last request failed.
	NetworkStatusError NetworkStatus = 8
)

func (s NetworkStatus) String() string {
	switch s {
	case NetworkStatusLoading:
		return "loading"
	case NetworkStatusSetVariables:
		return "setVariables"
	case NetworkStatusFetchMore:
		return "fetchMore"
	case NetworkStatusRefetch:
		return "refetch"
	case NetworkStatusPoll:
		return "poll"
	case NetworkStatusReady:
		return "ready"
	case NetworkStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// InFlight reports whether s describes a query with a request in flight.
func (s NetworkStatus) InFlight() bool {
	return s < NetworkStatusReady
}
