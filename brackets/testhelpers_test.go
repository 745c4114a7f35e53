package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/stretchr/testify/require"
)

// regionTeams builds seeds 1..size for each region; team id = region index*100 + seed.
func regionTeams(regions []string, size int) []*models.Team {
	teams := make([]*models.Team, 0, len(regions)*size)
	for ri, region := range regions {
		for seed := 1; seed <= size; seed++ {
			teams = append(teams, &models.Team{
				ID:           ri*100 + seed,
				TournamentID: 1,
				SchoolName:   fmt.Sprintf("%s %d", region, seed),
				Seed:         seed,
				Region:       region,
			})
		}
	}
	return teams
}

func fourTeamTournament() (*models.Tournament, []*models.Team) {
	t := &models.Tournament{ID: 1, Name: "Mini", NumRounds: 2, Regions: []string{"East"}}
	teams := []*models.Team{
		{ID: 1, TournamentID: 1, SchoolName: "One", Seed: 1, Region: "East"},
		{ID: 2, TournamentID: 1, SchoolName: "Two", Seed: 2, Region: "East"},
		{ID: 3, TournamentID: 1, SchoolName: "Three", Seed: 3, Region: "East"},
		{ID: 4, TournamentID: 1, SchoolName: "Four", Seed: 4, Region: "East"},
	}
	return t, teams
}

// ncaaTournament is the 68-team field: four regions of 16 seeds plus four play-in pairs.
func ncaaTournament() (*models.Tournament, []*models.Team) {
	regions := []string{"East", "West", "South", "Midwest"}
	t := &models.Tournament{ID: 1, Name: "NCAA", NumRounds: 7, Regions: regions, FirstFour: true}
	teams := regionTeams(regions, 16)
	playIns := []struct {
		region int
		seed   int
	}{{0, 16}, {1, 11}, {2, 16}, {3, 11}}
	for i, p := range playIns {
		teams = append(teams, &models.Team{
			ID:           1000 + i,
			TournamentID: 1,
			SchoolName:   fmt.Sprintf("Play-in %d", i),
			Seed:         p.seed,
			Region:       regions[p.region],
		})
	}
	return t, teams
}

func generate(t *testing.T, tournament *models.Tournament, teams []*models.Team) *models.Bracket {
	t.Helper()
	b, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Teams:      teams,
	})
	require.NoError(t, err)
	return b
}

func mustSelect(t *testing.T, b *models.Bracket, gameID string, teamID int) *models.Bracket {
	t.Helper()
	next, _, err := SelectWinner(b, gameID, teamID)
	require.NoError(t, err)
	return next
}

func mustUnselect(t *testing.T, b *models.Bracket, gameID string) *models.Bracket {
	t.Helper()
	next, _, err := UnselectWinner(b, gameID)
	require.NoError(t, err)
	return next
}

func ptr(v int) *int {
	return &v
}
