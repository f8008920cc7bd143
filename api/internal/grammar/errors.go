package grammar

import (
	"fmt"
	"time"
)

// ValidationError is bad inbound input. Msg is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type ParseErrorKind int

const (
	Unparsable ParseErrorKind = iota + 1
	InvalidShape
)

func (k ParseErrorKind) String() string {
	switch k {
	case Unparsable:
		return "unparsable"
	case InvalidShape:
		return "invalid_shape"
	}
	return "unknown"
}

// ParseError means the provider reply could not be turned into a Result.
// Raw keeps the provider text for server logs; Error() never includes it.
type ParseError struct {
	Kind   ParseErrorKind
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid AI response (%s): %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid AI response (%s)", e.Kind)
}

// TimeoutError means the provider did not answer within the deadline.
type TimeoutError struct {
	Provider string
	After    time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response after %s: %v", e.Provider, e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
