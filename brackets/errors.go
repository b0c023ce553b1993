package brackets

import "errors"

// Errors returned by the bracket engine. They are always wrapped with
// context, so compare with errors.Is.
var (
	ErrInvalidConfiguration = errors.New("invalid bracket configuration")
	ErrMalformedBracket     = errors.New("malformed bracket")

	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNotReady       = errors.New("match is missing an entrant")
	ErrMatchAlreadyDecided = errors.New("match already has a winner")
	ErrMatchNotDecided     = errors.New("match has no result to correct")
	ErrDownstreamDecided   = errors.New("next match has already been decided")

	ErrInvalidWinner   = errors.New("winner is not an entrant of the match")
	ErrAmbiguousResult = errors.New("tied score requires an explicit winner")
	ErrInvalidScore    = errors.New("score must not be negative")
)
