package analyzer

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a session record that violates a precondition of the
// aggregator, such as a missing start time.
var ErrInvalidInput = errors.New("invalid input")

// InvalidSessionError identifies the record that stopped an aggregation.
type InvalidSessionError struct {
	// Index is the position of the record in the input slice.
	Index int

	// ID is the record's identifier, if it had one.
	ID string

	// Reason describes what is wrong with the record.
	Reason string
}

func (e *InvalidSessionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid input: session %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid input: session %d: %s", e.Index, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidSessionError) Unwrap() error {
	return ErrInvalidInput
}
