package models

import "time"

// Tournament is a single-elimination competition a bracket is built for.
type Tournament struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	NumRounds      int       `json:"num_rounds" db:"num_rounds"`
	StartTime      time.Time `json:"start_time" db:"start_time"`
	Regions        []string  `json:"regions" db:"regions"`
	FirstFour      bool      `json:"first_four" db:"first_four"`
	BracketVersion int64     `json:"bracket_version" db:"bracket_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// HasRegion reports whether region is one of the tournament's declared regions.
func (t *Tournament) HasRegion(region string) bool {
	for _, r := range t.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// RegionIndex returns the declared position of region, or -1.
func (t *Tournament) RegionIndex(region string) int {
	for i, r := range t.Regions {
		if r == region {
			return i
		}
	}
	return -1
}
