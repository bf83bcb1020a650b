package placement

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
)

var (
	ErrMissingAvoidancePolicy    = errors.New("missing avoidance policy")
	ErrInsufficientDrawPositions = errors.New("insufficient draw positions")
	ErrNoCandidates              = errors.New("no candidates: every placement attempt produced assignment errors")
)

const (
	CodeMissingAvoidancePolicy    = "MISSING_AVOIDANCE_POLICY"
	CodeInsufficientDrawPositions = "INSUFFICIENT_DRAW_POSITIONS"
	CodeNoCandidates              = "NO_CANDIDATES"
	CodeAssignmentError           = "ASSIGNMENT_ERROR"
)

// AssignmentError is an error raised by an assignment primitive, together with
// the assignment that triggered it.
type AssignmentError struct {
	Assignment models.PositionAssignment
	Err        error
}

func (e *AssignmentError) Error() string {
	if e.Assignment.Bye {
		return fmt.Sprintf("assign bye to draw position %d: %v", e.Assignment.DrawPosition, e.Err)
	}
	return fmt.Sprintf("assign participant %s to draw position %d: %v", e.Assignment.ParticipantID, e.Assignment.DrawPosition, e.Err)
}

func (e *AssignmentError) Unwrap() error { return e.Err }

// ErrorCode maps an error returned by this package to its error code, or "" if unknown.
func ErrorCode(err error) string {
	var assignmentErr *AssignmentError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAvoidancePolicy):
		return CodeMissingAvoidancePolicy
	case errors.Is(err, ErrInsufficientDrawPositions):
		return CodeInsufficientDrawPositions
	case errors.Is(err, ErrNoCandidates):
		return CodeNoCandidates
	case errors.As(err, &assignmentErr):
		return CodeAssignmentError
	}
	return ""
}
