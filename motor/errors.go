package motor

import (
	"errors"
	"fmt"
)

var (
	// ErrContentUnavailable is returned when a response has no content to show,
	// or the content could not be fetched or decoded.
	ErrContentUnavailable = errors.New("response content unavailable")

	// ErrFlowNotFound is returned when an id does not exist in the store (or was purged).
	ErrFlowNotFound = errors.New("flow not found")

	// ErrInvalidLevel is returned for negative similarity levels.
	ErrInvalidLevel = errors.New("similarity level must be a non-negative integer")

	// ErrInvalidFilter is returned by the search engine for malformed or unknown filters.
	ErrInvalidFilter = errors.New("invalid search filter")

	// ErrNoSearcher is returned when a flow has no search collaborator configured.
	ErrNoSearcher = errors.New("no search service configured")
)

// SearchError reports a failed query against the search service.
type SearchError struct {
	Query  SearchQuery
	Status int // http status when the service answered, 0 for transport failures
	Err    error
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
