package billing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoValidLines is returned when an invoice has no line with a product,
	// a description and a positive quantity.
	ErrNoValidLines = errors.New("invoice has no valid line items")

	// ErrIncompleteLine is returned when a line is missing its product,
	// description or quantity.
	ErrIncompleteLine = errors.New("line item is incomplete")

	ErrNegativePrice = errors.New("unit price cannot be negative")
)

// ValidationError reports which line items blocked a computation.
// Lines holds zero-based indexes into the submitted line list.
type ValidationError struct {
	Err     error
	Lines   []int
	Details string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if len(e.Lines) > 0 {
		fmt.Fprintf(&b, " (lines %v)", e.Lines)
	}
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SchemeConfigurationError describes a scheme record that cannot be applied.
type SchemeConfigurationError struct {
	SchemeID string
	Field    string
	Message  string
}

func (e *SchemeConfigurationError) Error() string {
	if e.SchemeID == "" {
		return fmt.Sprintf("invalid scheme: %s %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid scheme %s: %s %s", e.SchemeID, e.Field, e.Message)
}
