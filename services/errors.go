package services

import "errors"

// Errors shared by the services and the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrDrawNotFound        = errors.New("draw not found")
	ErrStructureNotFound   = errors.New("structure not found")
	ErrParticipantNotFound = errors.New("participant not found")

	ErrDrawNameConflict    = errors.New("draw name already exists")
	ErrParticipantConflict = errors.New("participant is already registered for this draw")
	ErrPositionConflict    = errors.New("draw position or participant already assigned")
	ErrSwapNotAvailable    = errors.New("swap is not among the current swap options")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthNotConfigured      = errors.New("organizer account is not configured")
)
