package brackets

import (
	"errors"
	"strings"
)

var (
	// Illegal transitions
	ErrGameNotFound          = errors.New("game not found in bracket")
	ErrByeGame               = errors.New("bye games advance automatically and cannot be decided")
	ErrGameNotReady          = errors.New("game is not ready: both team slots must be filled")
	ErrWinnerAlreadySelected = errors.New("game already has a winner; unselect it first")
	ErrTeamNotInGame         = errors.New("team does not occupy either slot of the game")
	ErrNoWinnerSelected      = errors.New("game has no winner to unselect")

	// Stale-state conflict
	ErrStaleBracket = errors.New("bracket has changed since it was last read")

	ErrBracketInvalid      = errors.New("tournament data cannot form a bracket")
	ErrInconsistentBracket = errors.New("bracket state is inconsistent")
)

// ValidationError carries the validation gate messages that blocked construction.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return ErrBracketInvalid.Error() + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrBracketInvalid
}

// IsIllegalTransition reports whether err rejects a select or unselect on the current state.
func IsIllegalTransition(err error) bool {
	return errors.Is(err, ErrGameNotFound) ||
		errors.Is(err, ErrByeGame) ||
		errors.Is(err, ErrGameNotReady) ||
		errors.Is(err, ErrWinnerAlreadySelected) ||
		errors.Is(err, ErrTeamNotInGame) ||
		errors.Is(err, ErrNoWinnerSelected)
}
