package events

// WatchStart is emitted when a mediator binds an observable query.
type WatchStart struct {
	Operation   string
	FetchPolicy string
	Reused      bool
}

// WatchResult is emitted for every snapshot a mediator hands to its
// rendering layer.
type WatchResult struct {
	Operation     string
	Loading       bool
	NetworkStatus string
	HasData       bool
}

// WatchError is emitted when a structured query error is recorded.
type WatchError struct {
	Operation string
	Err       error
}

// Resubscribe is emitted when an error push forces the subscription to be
// torn down and reopened.
type Resubscribe struct {
	Operation string
}

// WatchStop is emitted when a mediator is cleaned up.
type WatchStop struct {
	Operation string
}
