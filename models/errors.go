// models/errors.go
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a pipeline stage is left with nothing to work on.
	ErrNoData = errors.New("no usable testing data")
	// ErrDuplicateLatest means two rows share a state's latest date after deduplication.
	ErrDuplicateLatest = errors.New("duplicate rows on latest date")
)

// NetworkError wraps a failed fetch of the remote testing endpoint.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports input that does not have the expected shape or type.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DataQualityWarning is a non-fatal finding about a state's data.
type DataQualityWarning struct {
	State  string
	Reason string
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("%s: %s", w.State, w.Reason)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
