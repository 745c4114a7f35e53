package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/calcutta-bracket/models"
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error)

	GetName() string
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds every game of the tournament. Opening-round slots are filled
// by seed, bye survivors are advanced, every other slot starts empty. The result is a
// pure function of the tournament and its teams.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := params.Tournament
	validation := Validate(t, params.Teams)
	if !validation.Valid {
		return nil, &ValidationError{Errors: validation.Errors}
	}

	teams := sortedTeams(params.Teams)
	bySeed := make(map[string]map[int][]*models.Team, len(t.Regions))
	for _, tm := range teams {
		if bySeed[tm.Region] == nil {
			bySeed[tm.Region] = make(map[int][]*models.Team)
		}
		bySeed[tm.Region][tm.Seed] = append(bySeed[tm.Region][tm.Seed], tm)
	}

	regionSize := len(bySeed[t.Regions[0]])
	s := newShape(append([]string(nil), t.Regions...), regionSize, t.FirstFour)

	b := &models.Bracket{
		TournamentID: t.ID,
		Regions:      s.regions,
		Rounds:       s.rounds,
		Version:      t.BracketVersion,
		Teams:        teams,
	}

	grid := make([][]*models.Game, len(s.rounds))
	for k, round := range s.rounds {
		grid[k] = make([]*models.Game, s.gamesInRound(k))
		for pos := range grid[k] {
			game := &models.Game{
				ID:           GameID(round, pos),
				TournamentID: t.ID,
				Round:        round,
				Region:       s.regionOf(k, pos),
				SortOrder:    pos,
			}
			grid[k][pos] = game
			b.Games = append(b.Games, game)
		}
	}

	order := seedOrder(regionSize)
	for ri, region := range s.regions {
		if s.firstFour {
			for j, seed := range order {
				game := grid[0][ri*regionSize+j]
				entrants := bySeed[region][seed]
				game.Team1ID = intPtr(entrants[0].ID)
				if len(entrants) == 1 {
					game.IsBye = true
					game.WinnerID = intPtr(entrants[0].ID)
					continue
				}
				game.Team2ID = intPtr(entrants[1].ID)
			}
			continue
		}
		for i := 0; i < regionSize/2; i++ {
			game := grid[0][ri*regionSize/2+i]
			game.Team1ID = intPtr(bySeed[region][order[2*i]][0].ID)
			game.Team2ID = intPtr(bySeed[region][order[2*i+1]][0].ID)
		}
	}

	idx, err := newIndex(b)
	if err != nil {
		return nil, fmt.Errorf("failed to index generated bracket for tournament %d: %w", t.ID, err)
	}
	idx.advanceByes()
	b.ChampionID = idx.champion()
	return b, nil
}

// GameID is the stable identifier of the game at position pos of round.
func GameID(round models.Round, pos int) string {
	return fmt.Sprintf("%s-%d", round, pos+1)
}

func intPtr(v int) *int {
	return &v
}
