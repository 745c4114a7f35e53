package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/Dosada05/calcutta-bracket/repositories"
	"github.com/Dosada05/calcutta-bracket/storage"
)

type CreateTournamentInput struct {
	Name      string    `json:"name"`
	NumRounds int       `json:"num_rounds"`
	StartTime time.Time `json:"start_time"`
	Regions   []string  `json:"regions"`
	FirstFour bool      `json:"first_four"`
}

// UpdateTournamentInput replaces every field of a tournament. A zero StartTime keeps
// the stored one.
type UpdateTournamentInput struct {
	Name      string    `json:"name"`
	NumRounds int       `json:"num_rounds"`
	StartTime time.Time `json:"start_time"`
	Regions   []string  `json:"regions"`
	FirstFour bool      `json:"first_four"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	// UpdateTournament corrects a tournament's settings. Changing the round count,
	// regions or first four discards any existing bracket.
	UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
}

type tournamentService struct {
	tx        repositories.Transactor
	repo      repositories.TournamentRepository
	teamRepo  repositories.TeamRepository
	gameRepo  repositories.GameRepository
	notifier  BracketNotifier
	snapshots storage.SnapshotPublisher
	logger    *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	repo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	notifier BracketNotifier,
	snapshots storage.SnapshotPublisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:        tx,
		repo:      repo,
		teamRepo:  teamRepo,
		gameRepo:  gameRepo,
		notifier:  notifier,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	t, err := newTournament(input.Name, input.NumRounds, input.Regions)
	if err != nil {
		return nil, err
	}
	t.StartTime = input.StartTime
	if t.StartTime.IsZero() {
		t.StartTime = time.Now().UTC()
	}
	t.FirstFour = input.FirstFour

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	next, err := newTournament(input.Name, input.NumRounds, input.Regions)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.Tournament
		reset   *models.Bracket
	)
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.repo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		reshaped := t.NumRounds != next.NumRounds || t.FirstFour != input.FirstFour || !slices.Equal(t.Regions, next.Regions)

		t.Name, t.NumRounds, t.Regions, t.FirstFour = next.Name, next.NumRounds, next.Regions, input.FirstFour
		if !input.StartTime.IsZero() {
			t.StartTime = input.StartTime
		}
		if err := s.repo.Update(ctx, exec, t); err != nil {
			return err
		}
		updated = t
		if !reshaped {
			return nil
		}

		// The stored games were built for the old shape.
		if err := s.gameRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		version, err := s.repo.BumpBracketVersion(ctx, exec, id, t.BracketVersion)
		if err != nil {
			return err
		}
		t.BracketVersion = version
		teams, err := s.teamRepo.ListByTournament(ctx, exec, id)
		if err != nil {
			return err
		}
		reset = brackets.Assemble(t, teams, nil)
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament updated",
		slog.Int("tournament_id", id), slog.Bool("bracket_discarded", reset != nil))
	if reset != nil {
		if s.notifier != nil {
			s.notifier.BroadcastBracket(reset)
		}
		if s.snapshots != nil {
			if err := s.snapshots.Remove(ctx, id); err != nil {
				s.logger.WarnContext(ctx, "failed to remove bracket snapshot", slog.Int("tournament_id", id), slog.Any("error", err))
			}
		}
	}
	return updated, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// newTournament checks the fields shared by create and update.
func newTournament(name string, numRounds int, regions []string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if numRounds <= 0 {
		return nil, ErrTournamentInvalidRounds
	}
	normalized, err := normalizeRegions(regions)
	if err != nil {
		return nil, err
	}
	return &models.Tournament{Name: name, NumRounds: numRounds, Regions: normalized}, nil
}

func normalizeRegions(regions []string) ([]string, error) {
	switch len(regions) {
	case 1, 2, 4:
	default:
		return nil, ErrTournamentInvalidRegions
	}
	out := make([]string, len(regions))
	seen := make(map[string]bool, len(regions))
	for i, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			return nil, ErrTournamentInvalidRegions
		}
		seen[r] = true
		out[i] = r
	}
	return out, nil
}
