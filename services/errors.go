package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/repositories"
)

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentNameConflict   = errors.New("tournament name already exists")
	ErrTournamentInvalidRegions = errors.New("tournament must declare 1, 2 or 4 distinct, non-empty regions")
	ErrTournamentInvalidRounds  = errors.New("tournament number of rounds must be positive")

	ErrTeamInvalid      = errors.New("team is invalid")
	ErrTeamNameConflict = errors.New("school is listed twice in this tournament")

	ErrBracketNotGenerated = errors.New("bracket has not been generated for this tournament")
)

// handleRepositoryError translates repository errors into service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound), errors.Is(err, repositories.ErrTeamTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentRegionsInvalid):
		return ErrTournamentInvalidRegions
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrBracketVersionConflict):
		return fmt.Errorf("%w: %w", brackets.ErrStaleBracket, err)
	}
	return err
}
