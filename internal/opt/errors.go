package opt

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid routing problem")
	// ErrInfeasible means no assignment satisfies the capacity and distance constraints.
	ErrInfeasible = errors.New("routing problem is infeasible")
	// ErrNoSolution means the time limit elapsed before any feasible assignment was found.
	ErrNoSolution = errors.New("no solution found within time limit")
)

// ValidationError describes a malformed Problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid routing problem: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
