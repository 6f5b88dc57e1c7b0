package api

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineClosed is returned when an action is submitted to an engine
	// whose scope has been cancelled.
	ErrEngineClosed = errors.New("paging engine closed")

	// ErrInvalidConfig is returned for unusable paging configurations.
	ErrInvalidConfig = errors.New("invalid paging config")

	// ErrUnknownAction is returned for action values other than
	// ActionLoadNextPage and ActionRefresh.
	ErrUnknownAction = errors.New("unknown paging action")
)

// LoaderPanicError wraps a panic raised by a DataLoader. The engine reports it
// as an Error result and keeps processing later actions.
type LoaderPanicError struct {
	Value any
	Stack []byte
}

func (e *LoaderPanicError) Error() string {
	return fmt.Sprintf("data loader panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *LoaderPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
