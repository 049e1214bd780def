package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is the error kind shared by every shape conflict.
//
// Use errors.Is(err, tensor.ErrShapeMismatch) to test for it and
// errors.As with *ShapeError to read the conflicting dimensions.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError describes which operation rejected which dimensions.
type ShapeError struct {
	Op      string // Operation that detected the conflict (e.g. "conv2d", "lam")
	Got     Shape  // Shape that was supplied
	Want    Shape  // Expected shape, nil when only Details applies
	Details string // Additional details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, ErrShapeMismatch)
	if e.Got != nil {
		msg += fmt.Sprintf(": got %v", e.Got)
	}
	if e.Want != nil {
		msg += fmt.Sprintf(", want %v", e.Want)
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Is reports ErrShapeMismatch as the error kind.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Mismatch builds a ShapeError for op with a formatted detail message.
func Mismatch(op string, got Shape, format string, args ...any) error {
	return &ShapeError{Op: op, Got: got.Clone(), Details: fmt.Sprintf(format, args...)}
}

// CheckRank returns a ShapeError when s does not have exactly rank dimensions.
func CheckRank(op string, s Shape, rank int) error {
	if len(s) != rank {
		return Mismatch(op, s, "expected %dD input, got %dD", rank, len(s))
	}
	return nil
}

// CheckDim returns a ShapeError when s[dim] != want.
// The shape must already have at least dim+1 dimensions.
func CheckDim(op string, s Shape, dim, want int) error {
	if s[dim] != want {
		return Mismatch(op, s, "dimension %d is %d, expected %d", dim, s[dim], want)
	}
	return nil
}
