package watch

import "github.com/google/go-cmp/cmp"

// dispatchCallbacks fires the completion or error callback for a settled
// result, at most once per settled state transition. A re-render with
// unchanged document and variables after an already settled result reports
// nothing, so incidental renders cannot double-fire the callbacks.
func (d *QueryData) dispatchCallbacks() {
	if d.handle == nil || d.previous.result == nil {
		return
	}
	result := d.previous.result
	if result.Loading {
		return
	}
	opts := d.options
	unchanged := true
	if prevOpts := d.previous.options; prevOpts != nil {
		unchanged = prevOpts.Document == opts.Document &&
			cmp.Equal(prevOpts.Variables, opts.Variables)
	}
	if unchanged && !d.previous.loading {
		// Already settled and nothing changed since: an incidental
		// re-render must not double-fire the callbacks.
		return
	}
	if opts.OnCompleted != nil && result.Error == nil && !opts.Skip {
		opts.OnCompleted(result.Data)
	} else if opts.OnError != nil && result.Error != nil {
		opts.OnError(result.Error)
	}
}
