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
	ErrGameNotFound      = errors.New("game not found")
	ErrGameTeamInvalid   = errors.New("game references an unknown team")
	ErrGameAlreadyExists = errors.New("game id already exists in this tournament")
	ErrGameRoundUnknown  = errors.New("stored game has an unknown round")
)

type GameRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Game, error)
	InsertAll(ctx context.Context, exec SQLExecutor, games []*models.Game) error
	// UpdateState writes slots and winner of each game.
	UpdateState(ctx context.Context, exec SQLExecutor, games []*models.Game) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Game, error) {
	query := `
		SELECT id, tournament_id, round, region, sort_order, team1_id, team2_id, is_bye, winner_id, updated_at
		FROM games
		WHERE tournament_id = $1
		ORDER BY sort_order ASC, id ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var game models.Game
		var round string
		if scanErr := rows.Scan(
			&game.ID,
			&game.TournamentID,
			&round,
			&game.Region,
			&game.SortOrder,
			&game.Team1ID,
			&game.Team2ID,
			&game.IsBye,
			&game.WinnerID,
			&game.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		if game.Round, err = models.ParseRound(round); err != nil {
			return nil, fmt.Errorf("%w: game %s: %v", ErrGameRoundUnknown, game.ID, err)
		}
		games = append(games, &game)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) InsertAll(ctx context.Context, exec SQLExecutor, games []*models.Game) error {
	if exec == nil {
		return errors.New("InsertAll requires a transaction")
	}
	query := `
		INSERT INTO games
			(id, tournament_id, round, region, sort_order, team1_id, team2_id, is_bye, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING updated_at`

	for _, g := range games {
		err := exec.QueryRowContext(ctx, query,
			g.ID, g.TournamentID, string(g.Round), g.Region, g.SortOrder,
			g.Team1ID, g.Team2ID, g.IsBye, g.WinnerID,
		).Scan(&g.UpdatedAt)
		if err != nil {
			return r.handleGameError(err)
		}
	}
	return nil
}

func (r *postgresGameRepository) UpdateState(ctx context.Context, exec SQLExecutor, games []*models.Game) error {
	if exec == nil {
		return errors.New("UpdateState requires a transaction")
	}
	query := `
		UPDATE games
		SET team1_id = $1, team2_id = $2, winner_id = $3, updated_at = NOW()
		WHERE tournament_id = $4 AND id = $5`

	for _, g := range games {
		result, err := exec.ExecContext(ctx, query, g.Team1ID, g.Team2ID, g.WinnerID, g.TournamentID, g.ID)
		if err != nil {
			return r.handleGameError(err)
		}
		if err := checkAffectedRows(result, fmt.Errorf("%w: %s", ErrGameNotFound, g.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresGameRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM games WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete games of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "games_pkey":
			return ErrGameAlreadyExists
		case "games_team1_id_fkey", "games_team2_id_fkey", "games_winner_id_fkey":
			return ErrGameTeamInvalid
		}
	}
	return err
}
