package lqr

import "errors"

// Domain errors for solver operations.
var (
	// ErrInvalidDimensions indicates plant matrices with inconsistent shapes.
	ErrInvalidDimensions = errors.New("lqr: invalid matrix dimensions")

	// ErrSingularInput indicates an input-cost term that stayed singular
	// even after diagonal regularization.
	ErrSingularInput = errors.New("lqr: input cost term is singular")
)
