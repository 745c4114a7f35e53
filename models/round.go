package models

import "fmt"

// Round is one stage of a single-elimination bracket.
type Round string

const (
	RoundFirstFour    Round = "first_four"
	RoundOf64         Round = "round_of_64"
	RoundOf32         Round = "round_of_32"
	RoundSweet16      Round = "sweet_16"
	RoundElite8       Round = "elite_8"
	RoundFinalFour    Round = "final_four"
	RoundChampionship Round = "championship"
)

// AllRounds lists every round in bracket order.
var AllRounds = []Round{
	RoundFirstFour,
	RoundOf64,
	RoundOf32,
	RoundSweet16,
	RoundElite8,
	RoundFinalFour,
	RoundChampionship,
}

// RegionalRounds are the rounds played inside a single region, in order.
var RegionalRounds = []Round{RoundOf64, RoundOf32, RoundSweet16, RoundElite8}

var roundLabels = map[Round]string{
	RoundFirstFour:    "First Four",
	RoundOf64:         "Round of 64",
	RoundOf32:         "Round of 32",
	RoundSweet16:      "Sweet 16",
	RoundElite8:       "Elite 8",
	RoundFinalFour:    "Final Four",
	RoundChampionship: "Championship",
}

// Order returns the position of the round in AllRounds, or -1 for unknown values.
func (r Round) Order() int {
	for i, known := range AllRounds {
		if known == r {
			return i
		}
	}
	return -1
}

func (r Round) Valid() bool {
	return r.Order() >= 0
}

// Label is the display name shared with the presentation layer.
func (r Round) Label() string {
	if label, ok := roundLabels[r]; ok {
		return label
	}
	return string(r)
}

// CrossRegion reports whether the round pairs winners from different regions.
func (r Round) CrossRegion() bool {
	return r == RoundFinalFour || r == RoundChampionship
}

func ParseRound(s string) (Round, error) {
	r := Round(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown round %q", s)
	}
	return r, nil
}
