package crawler

import (
	"errors"
	"fmt"
)

// Fetch error kinds
const (
	KindNetwork          = "network_error"
	KindHTTPStatus       = "http_status"
	KindTimeout          = "timeout"
	KindParse            = "parse_error"
	KindRobotsDisallowed = "robots_disallowed"
)

var (
	// ErrPipelineUsed is returned when Run is called on a pipeline that already ran
	ErrPipelineUsed = errors.New("pipeline has already run")
	// ErrNoFetcher is returned when a pipeline is built without a fetcher
	ErrNoFetcher = errors.New("page fetcher is required")
	// ErrNoSeedURL is returned when a pipeline is built without a seed URL
	ErrNoSeedURL = errors.New("seed URL is required")
	// ErrNoFields is returned when a pipeline is built without a field spec
	ErrNoFields = errors.New("field spec is required")
	// ErrInvalidLeafLimit is returned when the leaf page limit is not positive
	ErrInvalidLeafLimit = errors.New("max leaf pages must be greater than 0")
)

// FetchError describes a page that could not be retrieved
type FetchError struct {
	URL        string // URL that was requested
	Kind       string // One of the Kind* constants
	StatusCode int    // HTTP status code when Kind is KindHTTPStatus
	Err        error  // Underlying cause, if any
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// SeedError is the fatal error returned when the seed page cannot be fetched
type SeedError struct {
	URL string
	Err error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed %s unreachable: %v", e.URL, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }
