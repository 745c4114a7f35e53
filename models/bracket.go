package models

// Bracket is the full set of games of one tournament, ordered by round and sort order.
type Bracket struct {
	TournamentID int      `json:"tournament_id"`
	Regions      []string `json:"regions"`
	Rounds       []Round  `json:"rounds"`
	Version      int64    `json:"version"`
	Games        []*Game  `json:"games"`
	Teams        []*Team  `json:"teams"`
	ChampionID   *int     `json:"champion_id"`
}

// Game finds a game by id.
func (b *Bracket) Game(id string) *Game {
	for _, g := range b.Games {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// RoundGames returns the games of round r in sort order.
func (b *Bracket) RoundGames(r Round) []*Game {
	games := make([]*Game, 0)
	for _, g := range b.Games {
		if g.Round == r {
			games = append(games, g)
		}
	}
	return games
}

// Team finds a team by id.
func (b *Bracket) Team(id int) *Team {
	for _, t := range b.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Clone returns a deep copy of the games. Teams are immutable and shared.
func (b *Bracket) Clone() *Bracket {
	c := *b
	c.Regions = append([]string(nil), b.Regions...)
	c.Rounds = append([]Round(nil), b.Rounds...)
	c.Games = make([]*Game, len(b.Games))
	for i, g := range b.Games {
		c.Games[i] = g.Clone()
	}
	c.Teams = append([]*Team(nil), b.Teams...)
	c.ChampionID = cloneInt(b.ChampionID)
	return &c
}

// Equal compares topology, slots and winners of two brackets.
func (b *Bracket) Equal(o *Bracket) bool {
	if b.TournamentID != o.TournamentID || len(b.Games) != len(o.Games) || len(b.Rounds) != len(o.Rounds) {
		return false
	}
	for i := range b.Rounds {
		if b.Rounds[i] != o.Rounds[i] {
			return false
		}
	}
	for i := range b.Games {
		if !b.Games[i].Equal(o.Games[i]) {
			return false
		}
	}
	return true
}

// BracketValidation is the advisory result of checking a tournament's team setup.
type BracketValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
