package github

import (
	"errors"
	"fmt"
)

// ErrMissingCalendar means the response carried no contribution calendar.
var ErrMissingCalendar = errors.New("response has no contribution calendar")

// UpstreamError is returned when the GraphQL response reports errors.
// Errors holds the upstream error objects untouched so they can be relayed.
type UpstreamError struct {
	Errors []map[string]any
}

func (e *UpstreamError) Error() string {
	if len(e.Errors) == 1 {
		if msg, ok := e.Errors[0]["message"].(string); ok {
			return "github graphql error: " + msg
		}
	}
	return fmt.Sprintf("github graphql returned %d errors", len(e.Errors))
}

// FetchError covers transport failures, timeouts and unusable bodies.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch contribution calendar: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
