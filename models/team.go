package models

import "time"

// Team is a bracket participant. Teams are fixed before the bracket is built.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	SchoolID     *int      `json:"school_id,omitempty" db:"school_id"`
	SchoolName   string    `json:"school_name" db:"school_name"`
	Seed         int       `json:"seed" db:"seed"`
	Region       string    `json:"region" db:"region"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
