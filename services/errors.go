package services

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")

	ErrGameNotFound        = errors.New("game not found")
	ErrParticipantNotFound = errors.New("user is not a participant of this game")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// State conflicts.
	ErrGameClosed        = errors.New("game is cancelled or completed")
	ErrGameFull          = errors.New("game is full")
	ErrAlreadyJoined     = errors.New("user has already joined this game")
	ErrRosterLocked      = errors.New("roster is locked once the bracket is generated")
	ErrHostMustTransfer  = errors.New("host must transfer hosting before leaving")
	ErrNotTournament     = errors.New("game is not a tournament")
	ErrBracketExists     = errors.New("bracket has already been generated")
	ErrBracketNotCreated = errors.New("bracket has not been generated yet")
	ErrRosterNotFull     = errors.New("roster does not fill the bracket")
)
