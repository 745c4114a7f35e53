package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNameConflict      = errors.New("school is listed twice in this tournament")
	ErrTeamTournamentInvalid = errors.New("team references an unknown tournament")
)

type TeamRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Team, error)
	// ReplaceForTournament deletes every team of the tournament and inserts teams,
	// filling in their ids.
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, teams []*models.Team) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT id, tournament_id, school_id, school_name, seed, region, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.TournamentID,
			&team.SchoolID,
			&team.SchoolName,
			&team.Seed,
			&team.Region,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, teams []*models.Team) error {
	if exec == nil {
		return errors.New("ReplaceForTournament requires a transaction")
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM teams WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete teams of tournament %d: %w", tournamentID, err)
	}

	query := `
		INSERT INTO teams (tournament_id, school_id, school_name, seed, region)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	for _, team := range teams {
		team.TournamentID = tournamentID
		err := exec.QueryRowContext(ctx, query,
			team.TournamentID, team.SchoolID, team.SchoolName, team.Seed, team.Region,
		).Scan(&team.ID, &team.CreatedAt)
		if err != nil {
			return r.handleTeamError(err)
		}
	}
	return nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "teams_tournament_id_school_name_key":
			return ErrTeamNameConflict
		case "teams_tournament_id_fkey":
			return ErrTeamTournamentInvalid
		}
	}
	return fmt.Errorf("failed to insert team: %w", err)
}
