package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/Dosada05/calcutta-bracket/repositories"
	"github.com/Dosada05/calcutta-bracket/storage"
)

type TeamInput struct {
	SchoolID   *int   `json:"school_id,omitempty"`
	SchoolName string `json:"school_name"`
	Seed       int    `json:"seed"`
	Region     string `json:"region"`
}

type TeamService interface {
	ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error)
	// ReplaceTeams swaps the whole field of a tournament. Any existing bracket is
	// discarded because its games refer to the old teams.
	ReplaceTeams(ctx context.Context, tournamentID int, input []TeamInput) ([]*models.Team, error)
}

type teamService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	gameRepo       repositories.GameRepository
	notifier       BracketNotifier
	snapshots      storage.SnapshotPublisher
	logger         *slog.Logger
}

func NewTeamService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	notifier BracketNotifier,
	snapshots storage.SnapshotPublisher,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		gameRepo:       gameRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		logger:         logger,
	}
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of tournament %d: %w", tournamentID, err)
	}
	return teams, nil
}

func (s *teamService) ReplaceTeams(ctx context.Context, tournamentID int, input []TeamInput) ([]*models.Team, error) {
	teams := make([]*models.Team, 0, len(input))
	for i, in := range input {
		name := strings.TrimSpace(in.SchoolName)
		if name == "" {
			return nil, fmt.Errorf("%w: team %d has no school name", ErrTeamInvalid, i+1)
		}
		if in.Seed <= 0 {
			return nil, fmt.Errorf("%w: team %d (%s) has seed %d", ErrTeamInvalid, i+1, name, in.Seed)
		}
		teams = append(teams, &models.Team{
			TournamentID: tournamentID,
			SchoolID:     in.SchoolID,
			SchoolName:   name,
			Seed:         in.Seed,
			Region:       strings.TrimSpace(in.Region),
		})
	}

	var reset *models.Bracket
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := s.gameRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.teamRepo.ReplaceForTournament(ctx, exec, tournamentID, teams); err != nil {
			return err
		}
		version, err := s.tournamentRepo.BumpBracketVersion(ctx, exec, tournamentID, t.BracketVersion)
		if err != nil {
			return err
		}
		t.BracketVersion = version
		reset = brackets.Assemble(t, teams, nil)
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament teams replaced, bracket discarded",
		slog.Int("tournament_id", tournamentID), slog.Int("teams", len(teams)))
	if s.notifier != nil {
		s.notifier.BroadcastBracket(reset)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Remove(ctx, tournamentID); err != nil {
			s.logger.WarnContext(ctx, "failed to remove bracket snapshot", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	return teams, nil
}
