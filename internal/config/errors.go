package config

import "errors"

var (
	// ErrNoSeedURL is returned when no seed URL is provided
	ErrNoSeedURL = errors.New("no seed URL provided")
	// ErrInvalidSeedURL is returned when the seed URL is not http or https
	ErrInvalidSeedURL = errors.New("seed URL must be http or https")
	// ErrNoFields is returned when no output fields are configured
	ErrNoFields = errors.New("at least one field is required")
	// ErrInvalidField is returned for a field without a name or selector
	ErrInvalidField = errors.New("field needs a name and a selector")
	// ErrInvalidMaxLeafPages is returned when max_leaf_pages is not greater than 0
	ErrInvalidMaxLeafPages = errors.New("max_leaf_pages must be greater than 0")
	// ErrInvalidDelay is returned when the delay range is negative or inverted
	ErrInvalidDelay = errors.New("delay_min must be >= 0 and <= delay_max")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidFormat is returned for an unknown output format
	ErrInvalidFormat = errors.New("format must be csv, json or markdown")
	// ErrInvalidPattern is returned for a link pattern that does not compile
	ErrInvalidPattern = errors.New("invalid link pattern")
	// ErrInvalidAuthType is returned for an unknown auth type
	ErrInvalidAuthType = errors.New("auth type must be basic, bearer or api-key")
	// ErrInvalidHeader is returned for a header not in "Name: Value" form
	ErrInvalidHeader = errors.New("header must be in 'Name: Value' format")
)
