package brackets

import (
	"sort"

	"github.com/Dosada05/calcutta-bracket/models"
)

// Assemble puts stored games back into bracket order and derives the round list and
// champion from them. The tournament's bracket version becomes the bracket version.
// Stored games are not checked here: when they do not form a bracket ChampionID stays
// nil, so callers must Verify the result before serving it.
func Assemble(t *models.Tournament, teams []*models.Team, games []*models.Game) *models.Bracket {
	ordered := make([]*models.Game, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Round != ordered[j].Round {
			return ordered[i].Round.Order() < ordered[j].Round.Order()
		}
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	rounds := make([]models.Round, 0, len(models.AllRounds))
	for _, g := range ordered {
		if len(rounds) == 0 || rounds[len(rounds)-1] != g.Round {
			rounds = append(rounds, g.Round)
		}
	}

	b := &models.Bracket{
		TournamentID: t.ID,
		Regions:      append([]string(nil), t.Regions...),
		Rounds:       rounds,
		Version:      t.BracketVersion,
		Games:        ordered,
		Teams:        sortedTeams(teams),
	}
	if len(ordered) > 0 {
		if champion, err := Champion(b); err == nil {
			b.ChampionID = champion
		}
	}
	return b
}
