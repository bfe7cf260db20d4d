package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// InvariantError reports a configuration mistake made by the caller, such as
// passing a mutation document where a query is required. It is fatal and
// never retried.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// Invariantf builds an InvariantError from a format string.
func Invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

// QueryError is the single tagged error variant the observable collaborator
// may surface through the push channel or a result's error field. Anything
// pushed that is not a *QueryError is treated as an unexpected defect and
// re-raised rather than swallowed.
type QueryError struct {
	// GraphQLErrors holds field- and operation-level errors returned by the
	// server alongside (possibly partial) data.
	GraphQLErrors gqlerror.List
	// NetworkError holds a transport-level failure, if any.
	NetworkError error
}

func (e *QueryError) Error() string {
	var parts []string
	for _, ge := range e.GraphQLErrors {
		parts = append(parts, ge.Message)
	}
	if e.NetworkError != nil {
		parts = append(parts, e.NetworkError.Error())
	}
	if len(parts) == 0 {
		return "query error"
	}
	return strings.Join(parts, "; ")
}

func (e *QueryError) Unwrap() error { return e.NetworkError }

// Equal reports whether two query errors describe the same failure. Error
// values are not structurally comparable in general, so identity is judged
// by message and error count.
func (e *QueryError) Equal(other *QueryError) bool {
	if e == nil || other == nil {
		return e == other
	}
	return len(e.GraphQLErrors) == len(other.GraphQLErrors) &&
		(e.NetworkError == nil) == (other.NetworkError == nil) &&
		e.Error() == other.Error()
}

// Empty reports whether e carries no errors at all.
func (e *QueryError) Empty() bool {
	return e == nil || (len(e.GraphQLErrors) == 0 && e.NetworkError == nil)
}

// ErrorFrom wraps server-side errors into a QueryError, or returns nil when
// there is nothing to wrap.
func ErrorFrom(errs gqlerror.List) *QueryError {
	if len(errs) == 0 {
		return nil
	}
	return &QueryError{GraphQLErrors: errs}
}
