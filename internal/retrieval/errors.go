// ABOUTME: Error taxonomy for the query path
// ABOUTME: Client errors keep the service healthy; EmbedError marks server failures
package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned for empty or whitespace-only queries.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidK is returned when the requested result count is out of bounds.
	ErrInvalidK = errors.New("invalid result count")
)

// EmbedError marks an embedding-model failure during a live query. It is a
// server-class error: the caller gets a descriptive reason, and the
// manager's cached handles stay valid for subsequent requests.
type EmbedError struct {
	Err error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embedding failure: %v", e.Err)
}

func (e *EmbedError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err is the caller's fault rather than a
// service failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrInvalidK)
}
