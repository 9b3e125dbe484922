package pedigree

import (
	"errors"
	"fmt"
)

// Generation bounds accepted for any traversal.
const (
	MinGenerations = 1
	MaxGenerations = 9
)

// ErrInvalidBound is returned (wrapped in a *BoundError) when a requested
// generation count falls outside the accepted range.
var ErrInvalidBound = errors.New("pedigree: generation bound out of range")

// BoundError describes a rejected generation bound.
type BoundError struct {
	Value int
	Min   int
	Max   int
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("pedigree: generations must be between %d and %d, got %d", e.Min, e.Max, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidBound.
func (e *BoundError) Unwrap() error { return ErrInvalidBound }

// ValidateGenerations checks g against [MinGenerations, ceiling]. A ceiling
// outside [MinGenerations, MaxGenerations] falls back to MaxGenerations.
func ValidateGenerations(g, ceiling int) error {
	if ceiling < MinGenerations || ceiling > MaxGenerations {
		ceiling = MaxGenerations
	}
	if g < MinGenerations || g > ceiling {
		return &BoundError{Value: g, Min: MinGenerations, Max: ceiling}
	}
	return nil
}
