package events

// SSRRegister is emitted when an observable query is registered for reuse
// during a render-blocking pass.
type SSRRegister struct {
	Key       string
	Operation string
}

// SSRReuse is emitted when a render-blocking pass serves an observable from
// its registry instead of creating a new one.
type SSRReuse struct {
	Key       string
	Operation string
}
