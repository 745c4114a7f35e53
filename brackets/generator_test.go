package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedOrder(t *testing.T) {
	tests := []struct {
		size int
		want []int
	}{
		{2, []int{1, 2}},
		{4, []int{1, 4, 2, 3}},
		{8, []int{1, 8, 4, 5, 3, 6, 2, 7}},
		{16, []int{1, 16, 8, 9, 5, 12, 4, 13, 6, 11, 3, 14, 7, 10, 2, 15}},
	}
	for _, tt := range tests {
		got := seedOrder(tt.size)
		assert.Equal(t, tt.want, got, "size %d", tt.size)
		for i := 0; i < len(got); i += 2 {
			assert.Equal(t, tt.size+1, got[i]+got[i+1], "opening pair %d of size %d", i/2, tt.size)
		}
	}
}

func TestGenerateBracket_FourTeamRegion(t *testing.T) {
	tournament, teams := fourTeamTournament()
	b := generate(t, tournament, teams)

	assert.Equal(t, []models.Round{models.RoundOf64, models.RoundOf32}, b.Rounds)
	require.Len(t, b.Games, 3)

	first := b.Game("round_of_64-1")
	require.NotNil(t, first)
	assert.Equal(t, ptr(1), first.Team1ID)
	assert.Equal(t, ptr(4), first.Team2ID)
	assert.Equal(t, "East", *first.Region)
	assert.True(t, first.CanSelect())

	second := b.Game("round_of_64-2")
	require.NotNil(t, second)
	assert.Equal(t, ptr(2), second.Team1ID)
	assert.Equal(t, ptr(3), second.Team2ID)

	final := b.Game("round_of_32-1")
	require.NotNil(t, final)
	assert.Nil(t, final.Team1ID)
	assert.Nil(t, final.Team2ID)
	assert.False(t, final.CanSelect())
	assert.Equal(t, "East", *final.Region)
	assert.Nil(t, b.ChampionID)
}

func TestGenerateBracket_NCAAField(t *testing.T) {
	tournament, teams := ncaaTournament()
	b := generate(t, tournament, teams)

	assert.Equal(t, models.AllRounds, b.Rounds)
	wantCounts := map[models.Round]int{
		models.RoundFirstFour:    64,
		models.RoundOf64:         32,
		models.RoundOf32:         16,
		models.RoundSweet16:      8,
		models.RoundElite8:       4,
		models.RoundFinalFour:    2,
		models.RoundChampionship: 1,
	}
	for round, want := range wantCounts {
		assert.Len(t, b.RoundGames(round), want, "round %s", round)
	}

	playIns, byes := 0, 0
	for _, g := range b.RoundGames(models.RoundFirstFour) {
		if g.IsBye {
			byes++
			require.NotNil(t, g.WinnerID, "bye %s", g.ID)
			assert.Equal(t, *g.Team1ID, *g.WinnerID)
			assert.Nil(t, g.Team2ID)
			assert.False(t, g.CanSelect())
			continue
		}
		playIns++
		assert.True(t, g.CanSelect(), "play-in %s", g.ID)
	}
	assert.Equal(t, 4, playIns)
	assert.Equal(t, 60, byes)

	// East 1 seed gets a bye straight into its round of 64 game against the 16 play-in winner.
	east1 := b.Game("round_of_64-1")
	require.NotNil(t, east1)
	assert.Equal(t, ptr(1), east1.Team1ID)
	assert.Nil(t, east1.Team2ID)
	assert.False(t, east1.CanSelect())

	// East 8 vs 9 has two byes feeding it and is ready at once.
	east8 := b.Game("round_of_64-2")
	require.NotNil(t, east8)
	assert.Equal(t, ptr(8), east8.Team1ID)
	assert.Equal(t, ptr(9), east8.Team2ID)
	assert.True(t, east8.CanSelect())

	for _, g := range b.RoundGames(models.RoundFinalFour) {
		assert.Nil(t, g.Region)
	}
	for i, g := range b.RoundGames(models.RoundElite8) {
		assert.Equal(t, tournament.Regions[i], *g.Region)
	}
	require.NoError(t, Verify(b))
}

func TestGenerateBracket_Deterministic(t *testing.T) {
	tournament, teams := ncaaTournament()
	first := generate(t, tournament, teams)

	// Team input order must not matter.
	reversed := make([]*models.Team, len(teams))
	for i, tm := range teams {
		reversed[len(teams)-1-i] = tm
	}
	second := generate(t, tournament, reversed)

	if diff := cmp.Diff(first.Games, second.Games); diff != "" {
		t.Errorf("GenerateBracket() not deterministic (-first +second):\n%s", diff)
	}
}

func TestGenerateBracket_TwoRegionsEndInChampionship(t *testing.T) {
	tournament := &models.Tournament{ID: 3, NumRounds: 4, Regions: []string{"North", "South"}}
	b := generate(t, tournament, regionTeams(tournament.Regions, 8))

	assert.Equal(t, []models.Round{models.RoundOf64, models.RoundOf32, models.RoundSweet16, models.RoundChampionship}, b.Rounds)
	final := b.Game("championship-1")
	require.NotNil(t, final)
	assert.Nil(t, final.Region)

	down, slot, err := Feeds(b, "sweet_16-2")
	require.NoError(t, err)
	assert.Equal(t, "championship-1", down.ID)
	assert.Equal(t, 2, slot)
}

func TestGenerateBracket_RejectsInvalidTournament(t *testing.T) {
	tournament := &models.Tournament{ID: 1, NumRounds: 3, Regions: []string{"East"}}
	teams := regionTeams(tournament.Regions, 6)

	_, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Teams:      teams,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBracketInvalid))

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
}

func TestGenerateBracket_CanceledContext(t *testing.T) {
	tournament, teams := fourTeamTournament()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSingleEliminationGenerator().GenerateBracket(ctx, GenerateBracketParams{Tournament: tournament, Teams: teams})
	assert.ErrorIs(t, err, context.Canceled)
}
