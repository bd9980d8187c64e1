package routepath

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Parse and Extract.
var (
	// ErrAmbiguousWildcard is returned when a declaration contains more
	// than one wildcard segment.
	ErrAmbiguousWildcard = errors.New("routepath: no more than one wildcard may be used in a pattern")

	// ErrParamAfterWildcard is returned when a named parameter
	// immediately follows a wildcard, which makes the capture boundary
	// ambiguous.
	ErrParamAfterWildcard = errors.New("routepath: a parameter may not immediately follow a wildcard")

	// ErrNoMatch is returned by Extract when the path does not match the
	// pattern.
	ErrNoMatch = errors.New("routepath: path does not match pattern")
)

// ParseError wraps a parse failure with the offending declaration.
type ParseError struct {
	Declaration string
	Err         error
}

// Error returns the error message with the declaration that caused it.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing pattern %q: %v", e.Declaration, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}
