package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/Dosada05/calcutta-bracket/repositories"
	"github.com/Dosada05/calcutta-bracket/storage"
	"golang.org/x/sync/errgroup"
)

// BracketNotifier receives every bracket state that was committed.
type BracketNotifier interface {
	BroadcastBracket(b *models.Bracket)
}

// BracketView is a bracket as served to clients.
type BracketView struct {
	*models.Bracket
	SnapshotURL string `json:"snapshot_url,omitempty"`
}

type BracketService interface {
	ValidateBracket(ctx context.Context, tournamentID int) (*models.BracketValidation, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	// GenerateBracket builds the bracket from the current teams, replacing any existing one.
	GenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	SelectWinner(ctx context.Context, tournamentID int, gameID string, teamID int, expectedVersion *int64) (*BracketView, error)
	UnselectWinner(ctx context.Context, tournamentID int, gameID string, expectedVersion *int64) (*BracketView, error)
}

type bracketService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	gameRepo       repositories.GameRepository
	generator      brackets.BracketGenerator
	notifier       BracketNotifier
	snapshots      storage.SnapshotPublisher
	logger         *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	notifier BracketNotifier,
	snapshots storage.SnapshotPublisher,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		gameRepo:       gameRepo,
		generator:      brackets.NewSingleEliminationGenerator(),
		notifier:       notifier,
		snapshots:      snapshots,
		logger:         logger,
	}
}

func (s *bracketService) ValidateBracket(ctx context.Context, tournamentID int) (*models.BracketValidation, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of tournament %d: %w", tournamentID, err)
	}
	result := brackets.Validate(t, teams)
	return &result, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	var (
		tournament *models.Tournament
		teams      []*models.Team
		games      []*models.Game
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := s.teamRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list teams of tournament %d: %w", tournamentID, err)
		}
		teams = list
		return nil
	})
	g.Go(func() error {
		list, err := s.gameRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list games of tournament %d: %w", tournamentID, err)
		}
		games = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrBracketNotGenerated
	}

	b := brackets.Assemble(tournament, teams, games)
	if err := brackets.Verify(b); err != nil {
		s.logger.ErrorContext(ctx, "stored bracket is inconsistent", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return nil, err
	}
	return s.view(b), nil
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	var result *models.Bracket
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		teams, err := s.teamRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		b, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{Tournament: t, Teams: teams})
		if err != nil {
			return err
		}
		if err := s.gameRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.gameRepo.InsertAll(ctx, exec, b.Games); err != nil {
			return err
		}
		version, err := s.tournamentRepo.BumpBracketVersion(ctx, exec, tournamentID, t.BracketVersion)
		if err != nil {
			return err
		}
		b.Version = version
		result = b
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("games", len(result.Games)),
		slog.Int64("version", result.Version))
	return s.publish(ctx, result), nil
}

func (s *bracketService) SelectWinner(ctx context.Context, tournamentID int, gameID string, teamID int, expectedVersion *int64) (*BracketView, error) {
	b, changed, err := s.mutate(ctx, tournamentID, expectedVersion, func(b *models.Bracket) (*models.Bracket, []*models.Game, error) {
		return brackets.SelectWinner(b, gameID, teamID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "winner selected",
		slog.Int("tournament_id", tournamentID),
		slog.String("game_id", gameID),
		slog.Int("team_id", teamID),
		slog.Int("changed_games", changed),
		slog.Int64("version", b.Version))
	return s.publish(ctx, b), nil
}

func (s *bracketService) UnselectWinner(ctx context.Context, tournamentID int, gameID string, expectedVersion *int64) (*BracketView, error) {
	b, changed, err := s.mutate(ctx, tournamentID, expectedVersion, func(b *models.Bracket) (*models.Bracket, []*models.Game, error) {
		return brackets.UnselectWinner(b, gameID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "winner unselected",
		slog.Int("tournament_id", tournamentID),
		slog.String("game_id", gameID),
		slog.Int("changed_games", changed),
		slog.Int64("version", b.Version))
	return s.publish(ctx, b), nil
}

type bracketMutation func(b *models.Bracket) (*models.Bracket, []*models.Game, error)

// mutate applies op to the stored bracket inside one transaction. Only the games op
// reports as changed are written, and the version bump is conditional on the version
// that was read, so a concurrent writer makes the whole transaction roll back.
func (s *bracketService) mutate(ctx context.Context, tournamentID int, expectedVersion *int64, op bracketMutation) (*models.Bracket, int, error) {
	var (
		result  *models.Bracket
		changed int
	)
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		teams, err := s.teamRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		games, err := s.gameRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(games) == 0 {
			return ErrBracketNotGenerated
		}

		current := brackets.Assemble(t, teams, games)
		if err := brackets.CheckVersion(current, expectedVersion); err != nil {
			return err
		}
		next, changedGames, err := op(current)
		if err != nil {
			return err
		}
		if err := s.gameRepo.UpdateState(ctx, exec, changedGames); err != nil {
			return err
		}
		version, err := s.tournamentRepo.BumpBracketVersion(ctx, exec, tournamentID, current.Version)
		if err != nil {
			return err
		}
		next.Version = version
		result, changed = next, len(changedGames)
		return nil
	})
	if err != nil {
		if brackets.IsIllegalTransition(err) || errors.Is(err, brackets.ErrStaleBracket) {
			s.logger.InfoContext(ctx, "bracket change rejected", slog.Int("tournament_id", tournamentID), slog.String("reason", err.Error()))
		}
		return nil, 0, handleRepositoryError(err)
	}
	return result, changed, nil
}

// publish pushes a committed bracket to live subscribers and the public snapshot.
// Failures here are logged only: the change itself is already durable.
func (s *bracketService) publish(ctx context.Context, b *models.Bracket) *BracketView {
	if s.notifier != nil {
		s.notifier.BroadcastBracket(b)
	}
	view := &BracketView{Bracket: b}
	if s.snapshots != nil {
		location, err := s.snapshots.Publish(ctx, b)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to publish bracket snapshot", slog.Int("tournament_id", b.TournamentID), slog.Any("error", err))
			return view
		}
		view.SnapshotURL = location
	}
	return view
}

func (s *bracketService) view(b *models.Bracket) *BracketView {
	view := &BracketView{Bracket: b}
	if s.snapshots != nil {
		view.SnapshotURL = s.snapshots.URL(b.TournamentID)
	}
	return view
}
