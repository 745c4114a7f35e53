package models

import (
	"encoding/json"
	"time"
)

// Game is one decision point of the bracket. Team slots are nil while undetermined;
// a bye game has no second slot at all and its single team is the recorded winner.
type Game struct {
	ID           string    `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Round        Round     `json:"round" db:"round"`
	Region       *string   `json:"region" db:"region"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	Team1ID      *int      `json:"team1_id" db:"team1_id"`
	Team2ID      *int      `json:"team2_id" db:"team2_id"`
	IsBye        bool      `json:"is_bye" db:"is_bye"`
	WinnerID     *int      `json:"winner_id" db:"winner_id"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CanSelect is derived from slot occupancy and winner presence, never stored.
func (g *Game) CanSelect() bool {
	return !g.IsBye && g.Team1ID != nil && g.Team2ID != nil && g.WinnerID == nil
}

// HasTeam reports whether teamID occupies either slot.
func (g *Game) HasTeam(teamID int) bool {
	return (g.Team1ID != nil && *g.Team1ID == teamID) || (g.Team2ID != nil && *g.Team2ID == teamID)
}

// Slot returns the team in slot 1 or 2.
func (g *Game) Slot(slot int) *int {
	if slot == 1 {
		return g.Team1ID
	}
	return g.Team2ID
}

func (g *Game) SetSlot(slot int, teamID *int) {
	if slot == 1 {
		g.Team1ID = teamID
		return
	}
	g.Team2ID = teamID
}

func (g *Game) Clone() *Game {
	c := *g
	c.Region = cloneString(g.Region)
	c.Team1ID = cloneInt(g.Team1ID)
	c.Team2ID = cloneInt(g.Team2ID)
	c.WinnerID = cloneInt(g.WinnerID)
	return &c
}

// Equal compares the bracket-relevant state of two games, ignoring timestamps.
func (g *Game) Equal(o *Game) bool {
	return g.ID == o.ID &&
		g.TournamentID == o.TournamentID &&
		g.Round == o.Round &&
		equalString(g.Region, o.Region) &&
		g.SortOrder == o.SortOrder &&
		equalInt(g.Team1ID, o.Team1ID) &&
		equalInt(g.Team2ID, o.Team2ID) &&
		g.IsBye == o.IsBye &&
		equalInt(g.WinnerID, o.WinnerID)
}

func (g Game) MarshalJSON() ([]byte, error) {
	type game Game
	return json.Marshal(struct {
		game
		CanSelect bool `json:"can_select"`
	}{game(g), g.CanSelect()})
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
