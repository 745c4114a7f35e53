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
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentNameConflict   = errors.New("tournament name already exists")
	ErrBracketVersionConflict   = errors.New("bracket version changed concurrently")
	ErrTournamentRegionsInvalid = errors.New("tournament regions are invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate locks the tournament row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	// Update rewrites the descriptive and shape columns; the bracket version is untouched.
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	BumpBracketVersion(ctx context.Context, exec SQLExecutor, id int, expected int64) (int64, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, num_rounds, start_time, regions, first_four, bracket_version, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, num_rounds, start_time, regions, first_four)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, bracket_version, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.NumRounds, t.StartTime, pq.Array(t.Regions), t.FirstFour,
	).Scan(&t.ID, &t.BracketVersion, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.getOne(ctx, getExecutor(r.db, exec), query, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	if exec == nil {
		return nil, errors.New("GetForUpdate requires a transaction")
	}
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, exec, query, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.NumRounds, &t.StartTime, pq.Array(&t.Regions),
		&t.FirstFour, &t.BracketVersion, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_time DESC, id DESC`
	args := []interface{}{}
	argID := 1
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.NumRounds, &t.StartTime, pq.Array(&t.Regions),
			&t.FirstFour, &t.BracketVersion, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			num_rounds = $2,
			start_time = $3,
			regions = $4,
			first_four = $5
		WHERE id = $6`

	result, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		t.Name, t.NumRounds, t.StartTime, pq.Array(t.Regions), t.FirstFour, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// BumpBracketVersion advances the version only if it still equals expected.
func (r *postgresTournamentRepository) BumpBracketVersion(ctx context.Context, exec SQLExecutor, id int, expected int64) (int64, error) {
	query := `
		UPDATE tournaments
		SET bracket_version = bracket_version + 1
		WHERE id = $1 AND bracket_version = $2
		RETURNING bracket_version`

	var version int64
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, id, expected).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBracketVersionConflict
		}
		return 0, fmt.Errorf("failed to bump bracket version of tournament %d: %w", id, err)
	}
	return version, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		case "23514":
			if pqErr.Constraint == "tournaments_regions_check" {
				return ErrTournamentRegionsInvalid
			}
		}
	}
	return err
}
