package brackets

import "errors"

var (
	ErrUnsupportedStructureType = errors.New("unsupported structure type")
	ErrNotEnoughPositions       = errors.New("not enough draw positions to generate a structure (minimum 2)")
	ErrInvalidPoolSize          = errors.New("pool size must be at least 2")
	ErrInvalidFeedPositions     = errors.New("feed positions must equal the round two matchUps")

	ErrStructureNotFound        = errors.New("structure not found")
	ErrInvalidDrawPosition      = errors.New("draw position does not exist in structure")
	ErrDrawPositionFilled       = errors.New("draw position is already filled")
	ErrParticipantAlreadyPlaced = errors.New("participant is already placed in structure")
	ErrMissingParticipantID     = errors.New("participant id is required")
	ErrDrawPositionNotAssigned  = errors.New("draw position has no assignment to remove")
)
