package common

import (
	"errors"
	"fmt"
)

// FailKind identifies one entry in the conversion failure taxonomy. The
// orchestrator's retry policy is keyed on these values, never on error
// message text.
type FailKind string

const (
	// Extraction failures.
	KindEmptyInput         FailKind = "EMPTY_INPUT"
	KindServiceUnavailable FailKind = "SERVICE_UNAVAILABLE"
	KindUnparsableResponse FailKind = "UNPARSABLE_RESPONSE"

	// Normalization failures.
	KindMissingIngredients FailKind = "MISSING_INGREDIENTS"
	KindMissingSteps       FailKind = "MISSING_STEPS"

	// Persistence failures.
	KindDirectoryUnwritable FailKind = "DIRECTORY_UNWRITABLE"
	KindDiskFull            FailKind = "DISK_FULL"
)

// ExtractionError reports a failure to obtain a structured candidate from
// raw recipe text.
type ExtractionError struct {
	Kind FailKind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError creates an extraction error of the given kind.
func NewExtractionError(kind FailKind, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Err: err}
}

// NormalizationError reports a candidate that cannot be coerced into a
// valid RCIP record.
type NormalizationError struct {
	Kind FailKind
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed (%s)", e.Kind)
}

// NewNormalizationError creates a normalization error of the given kind.
func NewNormalizationError(kind FailKind) *NormalizationError {
	return &NormalizationError{Kind: kind}
}

// PersistenceError reports an I/O failure while writing a record.
type PersistenceError struct {
	Kind FailKind
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("persistence failed (%s)", e.Kind)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError creates a persistence error of the given kind.
func NewPersistenceError(kind FailKind, err error) *PersistenceError {
	return &PersistenceError{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from any error in the taxonomy. It
// returns an empty kind for errors that are not conversion failures.
func KindOf(err error) FailKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	var ne *NormalizationError
	if errors.As(err, &ne) {
		return ne.Kind
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// ErrorResponse is the JSON error shape returned by the viewer API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
