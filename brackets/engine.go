package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/calcutta-bracket/models"
)

// bracketIndex arranges games by round and position. Feed relationships are computed
// from positions: game p of round k feeds game p/2 of round k+1.
type bracketIndex struct {
	rounds map[models.Round]int
	grid   [][]*models.Game
	byID   map[string]*models.Game
}

func newIndex(b *models.Bracket) (*bracketIndex, error) {
	idx := &bracketIndex{
		rounds: make(map[models.Round]int, len(b.Rounds)),
		grid:   make([][]*models.Game, len(b.Rounds)),
		byID:   make(map[string]*models.Game, len(b.Games)),
	}
	for k, r := range b.Rounds {
		if _, dup := idx.rounds[r]; dup {
			return nil, fmt.Errorf("%w: round %s listed twice", ErrInconsistentBracket, r)
		}
		if k > 0 && r.Order() <= b.Rounds[k-1].Order() {
			return nil, fmt.Errorf("%w: round %s out of order", ErrInconsistentBracket, r)
		}
		idx.rounds[r] = k
	}
	for _, g := range b.Games {
		k, ok := idx.rounds[g.Round]
		if !ok {
			return nil, fmt.Errorf("%w: game %s is in unknown round %s", ErrInconsistentBracket, g.ID, g.Round)
		}
		if _, dup := idx.byID[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate game id %s", ErrInconsistentBracket, g.ID)
		}
		idx.byID[g.ID] = g
		idx.grid[k] = append(idx.grid[k], g)
	}
	for k := range idx.grid {
		games := idx.grid[k]
		sort.Slice(games, func(i, j int) bool { return games[i].SortOrder < games[j].SortOrder })
		for pos, g := range games {
			if g.SortOrder != pos {
				return nil, fmt.Errorf("%w: round %s has a gap at position %d", ErrInconsistentBracket, g.Round, pos)
			}
		}
		if k > 0 && len(games)*2 != len(idx.grid[k-1]) {
			return nil, fmt.Errorf("%w: round %s has %d games, expected %d",
				ErrInconsistentBracket, b.Rounds[k], len(games), len(idx.grid[k-1])/2)
		}
	}
	if n := len(idx.grid); n > 0 && len(idx.grid[n-1]) != 1 {
		return nil, fmt.Errorf("%w: final round has %d games", ErrInconsistentBracket, len(idx.grid[n-1]))
	}
	return idx, nil
}

// feeds returns the game g's winner advances into and the slot it fills.
func (idx *bracketIndex) feeds(g *models.Game) (*models.Game, int) {
	k := idx.rounds[g.Round]
	if k+1 >= len(idx.grid) {
		return nil, 0
	}
	return idx.grid[k+1][g.SortOrder/2], 1 + g.SortOrder%2
}

// feeders returns the two games whose winners fill g's slots, or nil for the opening round.
func (idx *bracketIndex) feeders(g *models.Game) []*models.Game {
	k := idx.rounds[g.Round]
	if k == 0 {
		return nil
	}
	prev := idx.grid[k-1]
	return []*models.Game{prev[2*g.SortOrder], prev[2*g.SortOrder+1]}
}

func (idx *bracketIndex) champion() *int {
	if len(idx.grid) == 0 {
		return nil
	}
	final := idx.grid[len(idx.grid)-1][0]
	if final.WinnerID == nil {
		return nil
	}
	v := *final.WinnerID
	return &v
}

// advanceByes copies every bye winner into the slot it feeds.
func (idx *bracketIndex) advanceByes() {
	if len(idx.grid) == 0 {
		return
	}
	for _, g := range idx.grid[0] {
		if !g.IsBye || g.WinnerID == nil {
			continue
		}
		if down, slot := idx.feeds(g); down != nil {
			down.SetSlot(slot, intPtr(*g.WinnerID))
		}
	}
}

// changeSet collects the games an operation touched, once each.
type changeSet struct {
	seen  map[string]bool
	games []*models.Game
}

func (c *changeSet) add(g *models.Game) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[g.ID] {
		return
	}
	c.seen[g.ID] = true
	c.games = append(c.games, g)
}

func (c *changeSet) sorted() []*models.Game {
	sort.Slice(c.games, func(i, j int) bool {
		if c.games[i].Round != c.games[j].Round {
			return c.games[i].Round.Order() < c.games[j].Round.Order()
		}
		return c.games[i].SortOrder < c.games[j].SortOrder
	})
	return c.games
}

// SelectWinner records teamID as the winner of gameID and advances it into the game
// it feeds. The input bracket is never modified: the returned bracket is a new copy
// and changed lists the games of that copy whose state differs from the input.
func SelectWinner(b *models.Bracket, gameID string, teamID int) (*models.Bracket, []*models.Game, error) {
	next := b.Clone()
	idx, err := newIndex(next)
	if err != nil {
		return nil, nil, err
	}
	g, ok := idx.byID[gameID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	switch {
	case g.IsBye:
		return nil, nil, fmt.Errorf("%w: %s", ErrByeGame, gameID)
	case g.WinnerID != nil:
		return nil, nil, fmt.Errorf("%w: %s", ErrWinnerAlreadySelected, gameID)
	case g.Team1ID == nil || g.Team2ID == nil:
		return nil, nil, fmt.Errorf("%w: %s", ErrGameNotReady, gameID)
	case !g.HasTeam(teamID):
		return nil, nil, fmt.Errorf("%w: team %d, game %s", ErrTeamNotInGame, teamID, gameID)
	}

	var changed changeSet
	g.WinnerID = intPtr(teamID)
	changed.add(g)
	if down, slot := idx.feeds(g); down != nil {
		if occupant := down.Slot(slot); occupant != nil {
			return nil, nil, fmt.Errorf("%w: slot %d of game %s already holds team %d", ErrInconsistentBracket, slot, down.ID, *occupant)
		}
		down.SetSlot(slot, intPtr(teamID))
		changed.add(down)
	}
	next.ChampionID = idx.champion()
	return next, changed.sorted(), nil
}

// UnselectWinner clears the winner of gameID and retracts it from the game it fed.
// Every later decision that depended on it is cleared as well, walking forward with a
// worklist until no decided game remains downstream of a retraction.
func UnselectWinner(b *models.Bracket, gameID string) (*models.Bracket, []*models.Game, error) {
	next := b.Clone()
	idx, err := newIndex(next)
	if err != nil {
		return nil, nil, err
	}
	g, ok := idx.byID[gameID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if g.IsBye {
		return nil, nil, fmt.Errorf("%w: %s", ErrByeGame, gameID)
	}
	if g.WinnerID == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoWinnerSelected, gameID)
	}

	var changed changeSet
	pending := []*models.Game{g}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		winner := cur.WinnerID
		cur.WinnerID = nil
		changed.add(cur)

		down, slot := idx.feeds(cur)
		if down == nil {
			continue
		}
		if occupant := down.Slot(slot); occupant != nil && *occupant == *winner {
			down.SetSlot(slot, nil)
			changed.add(down)
		}
		if down.WinnerID != nil {
			pending = append(pending, down)
		}
	}
	next.ChampionID = idx.champion()
	return next, changed.sorted(), nil
}

// CheckVersion rejects a caller whose last read is older than the bracket. A nil
// expected version skips the check.
func CheckVersion(b *models.Bracket, expected *int64) error {
	if expected != nil && *expected != b.Version {
		return fmt.Errorf("%w: read version %d, current version %d", ErrStaleBracket, *expected, b.Version)
	}
	return nil
}

// Feeds returns the game the winner of gameID advances into and the slot it fills.
// The final game feeds nothing.
func Feeds(b *models.Bracket, gameID string) (*models.Game, int, error) {
	idx, err := newIndex(b)
	if err != nil {
		return nil, 0, err
	}
	g, ok := idx.byID[gameID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	down, slot := idx.feeds(g)
	return down, slot, nil
}

// Feeders returns the two games that fill gameID's slots; opening-round games have none.
func Feeders(b *models.Bracket, gameID string) ([]*models.Game, error) {
	idx, err := newIndex(b)
	if err != nil {
		return nil, err
	}
	g, ok := idx.byID[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return idx.feeders(g), nil
}

// Champion returns the winner of the final game, nil while undecided. Games that do
// not form a bracket give ErrInconsistentBracket.
func Champion(b *models.Bracket) (*int, error) {
	idx, err := newIndex(b)
	if err != nil {
		return nil, err
	}
	return idx.champion(), nil
}

// Reset returns a copy of b with every decision removed: opening-round seeding and
// bye advancement stay, all later slots are emptied.
func Reset(b *models.Bracket) (*models.Bracket, error) {
	next := b.Clone()
	idx, err := newIndex(next)
	if err != nil {
		return nil, err
	}
	for k, games := range idx.grid {
		for _, g := range games {
			if k > 0 {
				g.Team1ID, g.Team2ID = nil, nil
			}
			if !g.IsBye {
				g.WinnerID = nil
			}
		}
	}
	idx.advanceByes()
	next.ChampionID = nil
	return next, nil
}

// Replay resets b and re-applies its recorded winners round by round. A consistent
// bracket replays to itself.
func Replay(b *models.Bracket) (*models.Bracket, error) {
	idx, err := newIndex(b)
	if err != nil {
		return nil, err
	}
	out, err := Reset(b)
	if err != nil {
		return nil, err
	}
	for _, games := range idx.grid {
		for _, g := range games {
			if g.IsBye || g.WinnerID == nil {
				continue
			}
			out, _, err = SelectWinner(out, g.ID, *g.WinnerID)
			if err != nil {
				return nil, fmt.Errorf("replaying game %s: %w", g.ID, err)
			}
		}
	}
	return out, nil
}

// Verify reports ErrInconsistentBracket when b's slots or winners cannot be produced
// by replaying its own decisions.
func Verify(b *models.Bracket) error {
	replayed, err := Replay(b)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInconsistentBracket, err)
	}
	if !replayed.Equal(b) {
		return fmt.Errorf("%w: slots do not match recorded winners", ErrInconsistentBracket)
	}
	return nil
}
