package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable marks transport failures against the content store or the oracle.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNoStructuredOutput marks oracle output that holds no parseable JSON array.
	ErrNoStructuredOutput = errors.New("no structured output")
	// ErrConfigurationMissing marks an absent credential or identifier.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrExtractionFailed marks a failed oracle call.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrQueryRejected marks a query the content store refused (bad filter or sort).
	ErrQueryRejected = errors.New("query rejected")

	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicate         = errors.New("duplicate prospect")
	ErrRunInProgress     = errors.New("radar run already in progress")
)

// StructuredOutputError carries a prefix of the raw oracle text for diagnostics.
type StructuredOutputError struct {
	Excerpt string
	Err     error
}

func (e *StructuredOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (raw: %q)", ErrNoStructuredOutput, e.Err, e.Excerpt)
	}
	return fmt.Sprintf("%s (raw: %q)", ErrNoStructuredOutput, e.Excerpt)
}

func (e *StructuredOutputError) Is(target error) bool {
	return target == ErrNoStructuredOutput
}

func (e *StructuredOutputError) Unwrap() error {
	return e.Err
}

// QueryRejectedError is returned by a paged querier when the remote service
// answers with a service-level error object instead of a result page.
type QueryRejectedError struct {
	Status  int
	Code    string
	Message string
}

func (e *QueryRejectedError) Error() string {
	return fmt.Sprintf("query rejected (%d %s): %s", e.Status, e.Code, e.Message)
}

func (e *QueryRejectedError) Is(target error) bool {
	return target == ErrQueryRejected
}

// Upstream tags err as an upstream failure unless it already carries a
// classification the caller must see unchanged.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConfigurationMissing) || errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrNoStructuredOutput) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
