package ticketcode

import (
	"errors"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

var (
	// ErrFieldOutOfRange means a slice parsed but failed its domain check
	ErrFieldOutOfRange = errors.New("field out of range")
	// ErrStructuralTruncation means the code is too short for a required slice
	ErrStructuralTruncation = errors.New("code truncated")
	// ErrUnsupportedBuyMethod covers quick pick and unknown discriminators
	ErrUnsupportedBuyMethod = errors.New("unsupported buy method")
	// ErrNonNumericInput means the frame holds something other than digits
	ErrNonNumericInput = errors.New("non-numeric input")
	// ErrTooShort means the code cannot hold the common header
	ErrTooShort = errors.New("code shorter than header")
	// ErrEmptySelection means a selection decoded but selects no horse
	ErrEmptySelection = errors.New("empty selection")
	// ErrIncomplete means a decode lacks the fields needed to use it
	ErrIncomplete = errors.New("required information missing")
)

// FieldError ties a decode failure to the field it was found in
type FieldError struct {
	Field string
	Err   error
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Msg)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Err: err, Msg: fmt.Sprintf(format, args...)}
}

// issueKind maps a sentinel to the kind recorded on the ticket
func issueKind(err error) string {
	switch {
	case errors.Is(err, ErrFieldOutOfRange):
		return models.IssueFieldOutOfRange
	case errors.Is(err, ErrStructuralTruncation):
		return models.IssueStructuralTruncation
	case errors.Is(err, ErrUnsupportedBuyMethod):
		return models.IssueUnsupportedBuyMethod
	case errors.Is(err, ErrNonNumericInput):
		return models.IssueNonNumericInput
	default:
		return models.IssueUnrecognizedSelection
	}
}

func toIssue(err error) models.DecodeIssue {
	issue := models.DecodeIssue{Kind: issueKind(err), Message: err.Error()}
	var fe *FieldError
	if errors.As(err, &fe) {
		issue.Field = fe.Field
	}
	return issue
}
