package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/db"
	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL; tests are skipped without it.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	conn, err := db.Connect(dsn, 5*time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(context.Background(), conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func createTournament(t *testing.T, repo TournamentRepository) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:      fmt.Sprintf("repo-test-%d", time.Now().UnixNano()),
		NumRounds: 2,
		StartTime: time.Now().UTC().Truncate(time.Second),
		Regions:   []string{"East"},
	}
	require.NoError(t, repo.Create(context.Background(), tournament))
	require.NotZero(t, tournament.ID)
	return tournament
}

func TestPostgresRepositories_BracketLifecycle(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	tournaments := NewPostgresTournamentRepository(conn)
	teams := NewPostgresTeamRepository(conn)
	games := NewPostgresGameRepository(conn)
	tx := NewTransactor(conn, nil)

	tournament := createTournament(t, tournaments)
	field := []*models.Team{
		{SchoolName: "One", Seed: 1, Region: "East"},
		{SchoolName: "Two", Seed: 2, Region: "East"},
		{SchoolName: "Three", Seed: 3, Region: "East"},
		{SchoolName: "Four", Seed: 4, Region: "East"},
	}
	require.NoError(t, tx.InTx(ctx, func(exec SQLExecutor) error {
		return teams.ReplaceForTournament(ctx, exec, tournament.ID, field)
	}))

	stored, err := teams.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)

	b, err := brackets.NewSingleEliminationGenerator().GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament: tournament,
		Teams:      stored,
	})
	require.NoError(t, err)
	require.NoError(t, tx.InTx(ctx, func(exec SQLExecutor) error {
		return games.InsertAll(ctx, exec, b.Games)
	}))

	next, changed, err := brackets.SelectWinner(b, "round_of_64-1", *b.Game("round_of_64-1").Team1ID)
	require.NoError(t, err)
	require.NoError(t, tx.InTx(ctx, func(exec SQLExecutor) error {
		if err := games.UpdateState(ctx, exec, changed); err != nil {
			return err
		}
		_, err := tournaments.BumpBracketVersion(ctx, exec, tournament.ID, 0)
		return err
	}))

	reloaded, err := tournaments.GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.BracketVersion)
	assert.Equal(t, []string{"East"}, reloaded.Regions)

	loaded, err := games.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	got := brackets.Assemble(reloaded, stored, loaded)
	assert.True(t, got.Equal(next))
	require.NoError(t, brackets.Verify(got))

	_, err = tournaments.BumpBracketVersion(ctx, nil, tournament.ID, 0)
	assert.ErrorIs(t, err, ErrBracketVersionConflict)

	require.NoError(t, tx.InTx(ctx, func(exec SQLExecutor) error {
		if err := games.DeleteByTournament(ctx, exec, tournament.ID); err != nil {
			return err
		}
		return teams.ReplaceForTournament(ctx, exec, tournament.ID, nil)
	}))
	loaded, err = games.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPostgresRepositories_Errors(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	tournaments := NewPostgresTournamentRepository(conn)
	teams := NewPostgresTeamRepository(conn)
	tx := NewTransactor(conn, nil)

	_, err := tournaments.GetByID(ctx, nil, -1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	tournament := createTournament(t, tournaments)
	dup := &models.Tournament{Name: tournament.Name, NumRounds: 2, StartTime: time.Now(), Regions: []string{"East"}}
	assert.ErrorIs(t, tournaments.Create(ctx, dup), ErrTournamentNameConflict)

	err = tx.InTx(ctx, func(exec SQLExecutor) error {
		return teams.ReplaceForTournament(ctx, exec, tournament.ID, []*models.Team{
			{SchoolName: "Same", Seed: 1, Region: "East"},
			{SchoolName: "Same", Seed: 2, Region: "East"},
		})
	})
	assert.ErrorIs(t, err, ErrTeamNameConflict)

	// The failed transaction left nothing behind.
	stored, err := teams.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	sentinel := errors.New("boom")
	assert.ErrorIs(t, tx.InTx(ctx, func(SQLExecutor) error { return sentinel }), sentinel)
}

func TestPostgresRepositories_UpdateTournament(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	tournaments := NewPostgresTournamentRepository(conn)

	tournament := createTournament(t, tournaments)
	other := createTournament(t, tournaments)

	tournament.NumRounds = 3
	tournament.Regions = []string{"East", "West"}
	tournament.FirstFour = true
	require.NoError(t, tournaments.Update(ctx, nil, tournament))

	reloaded, err := tournaments.GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.NumRounds)
	assert.Equal(t, []string{"East", "West"}, reloaded.Regions)
	assert.True(t, reloaded.FirstFour)
	assert.Equal(t, int64(0), reloaded.BracketVersion)

	tournament.Name = other.Name
	assert.ErrorIs(t, tournaments.Update(ctx, nil, tournament), ErrTournamentNameConflict)

	assert.ErrorIs(t, tournaments.Update(ctx, nil, &models.Tournament{ID: -1, Name: "ghost", NumRounds: 1, Regions: []string{"East"}}), ErrTournamentNotFound)
}
