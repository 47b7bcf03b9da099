package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig signals an invalid problem descriptor or search configuration.
	ErrInvalidConfig = errors.New("invalid search configuration")
	// ErrDimensionMismatch signals a candidate with the wrong feature dimensionality.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	// ErrDegenerateWindow signals a sampling window that cannot produce distinct candidates.
	ErrDegenerateWindow = errors.New("degenerate window")
	// ErrCacheContention signals that an insight cache merge could not acquire its
	// signature lock within the retry bound.
	ErrCacheContention = errors.New("insight cache contention")
	// ErrBatchDisposed signals use of a candidate batch after disposal.
	ErrBatchDisposed = errors.New("candidate batch already disposed")
)

// DimensionError wraps ErrDimensionMismatch with the expected and actual sizes.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionError{Want: want, Got: got}
}

// DegenerateWindowError wraps ErrDegenerateWindow with the offending radius.
type DegenerateWindowError struct {
	Radius float64
}

func (e *DegenerateWindowError) Error() string {
	return fmt.Sprintf("%s: radius %g", ErrDegenerateWindow.Error(), e.Radius)
}

func (e *DegenerateWindowError) Unwrap() error { return ErrDegenerateWindow }

// NewDegenerateWindow creates a degenerate window error.
func NewDegenerateWindow(radius float64) error {
	return &DegenerateWindowError{Radius: radius}
}
