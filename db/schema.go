package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names are matched by the repositories when translating driver errors.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id              SERIAL PRIMARY KEY,
		name            TEXT NOT NULL,
		num_rounds      INTEGER NOT NULL CHECK (num_rounds > 0),
		start_time      TIMESTAMPTZ NOT NULL,
		regions         TEXT[] NOT NULL,
		first_four      BOOLEAN NOT NULL DEFAULT FALSE,
		bracket_version BIGINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT tournaments_name_key UNIQUE (name),
		CONSTRAINT tournaments_regions_check CHECK (cardinality(regions) IN (1, 2, 4))
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id            SERIAL PRIMARY KEY,
		tournament_id INTEGER NOT NULL,
		school_id     INTEGER,
		school_name   TEXT NOT NULL,
		seed          INTEGER NOT NULL,
		region        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT teams_tournament_id_fkey FOREIGN KEY (tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE,
		CONSTRAINT teams_tournament_id_school_name_key UNIQUE (tournament_id, school_name)
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id            TEXT NOT NULL,
		tournament_id INTEGER NOT NULL,
		round         TEXT NOT NULL,
		region        TEXT,
		sort_order    INTEGER NOT NULL,
		team1_id      INTEGER,
		team2_id      INTEGER,
		is_bye        BOOLEAN NOT NULL DEFAULT FALSE,
		winner_id     INTEGER,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT games_pkey PRIMARY KEY (tournament_id, id),
		CONSTRAINT games_tournament_id_fkey FOREIGN KEY (tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE,
		CONSTRAINT games_team1_id_fkey FOREIGN KEY (team1_id) REFERENCES teams (id),
		CONSTRAINT games_team2_id_fkey FOREIGN KEY (team2_id) REFERENCES teams (id),
		CONSTRAINT games_winner_id_fkey FOREIGN KEY (winner_id) REFERENCES teams (id)
	)`,
	`CREATE INDEX IF NOT EXISTS teams_tournament_id_idx ON teams (tournament_id)`,
}

// CreateSchema creates the tables the service needs if they do not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
