package brackets

import "github.com/Dosada05/calcutta-bracket/models"

// shape describes the topology implied by a validated tournament.
type shape struct {
	regions    []string
	regionSize int
	firstFour  bool
	rounds     []models.Round
}

func newShape(regions []string, regionSize int, firstFour bool) shape {
	return shape{
		regions:    regions,
		regionSize: regionSize,
		firstFour:  firstFour,
		rounds:     roundsFor(regionSize, len(regions), firstFour),
	}
}

func roundsFor(regionSize, regionCount int, firstFour bool) []models.Round {
	rounds := make([]models.Round, 0, len(models.AllRounds))
	if firstFour {
		rounds = append(rounds, models.RoundFirstFour)
	}
	rounds = append(rounds, models.RegionalRounds[:log2(regionSize)]...)
	switch regionCount {
	case 2:
		rounds = append(rounds, models.RoundChampionship)
	case 4:
		rounds = append(rounds, models.RoundFinalFour, models.RoundChampionship)
	}
	return rounds
}

// gamesInRound returns how many games round index k holds.
func (s shape) gamesInRound(k int) int {
	base := len(s.regions) * s.regionSize / 2
	if s.firstFour {
		base *= 2
	}
	return base >> k
}

// regionOf returns the region a game at position pos of round index k belongs to.
func (s shape) regionOf(k, pos int) *string {
	if s.rounds[k].CrossRegion() {
		return nil
	}
	perRegion := s.gamesInRound(k) / len(s.regions)
	region := s.regions[pos/perRegion]
	return &region
}
