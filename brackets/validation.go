package brackets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/calcutta-bracket/models"
)

// Validate checks whether the tournament's teams can form a bracket. It never fails:
// problems are returned as an ordered list of messages, and the same input always
// produces the same list.
func Validate(t *models.Tournament, teams []*models.Team) models.BracketValidation {
	errs := validate(t, teams)
	if errs == nil {
		errs = []string{}
	}
	return models.BracketValidation{Valid: len(errs) == 0, Errors: errs}
}

func validate(t *models.Tournament, teams []*models.Team) []string {
	var errs []string
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if t == nil {
		return []string{"tournament is required"}
	}

	shapeOK := true
	switch len(t.Regions) {
	case 1, 2, 4:
	default:
		addf("tournament must declare 1, 2 or 4 regions, got %d", len(t.Regions))
		shapeOK = false
	}
	declared := make(map[string]bool, len(t.Regions))
	for _, r := range t.Regions {
		if strings.TrimSpace(r) == "" {
			addf("region names must not be empty")
			shapeOK = false
			continue
		}
		if declared[r] {
			addf("region %q is declared more than once", r)
			shapeOK = false
		}
		declared[r] = true
	}

	if len(teams) == 0 {
		addf("tournament has no teams")
		return errs
	}

	byRegion := make(map[string][]*models.Team)
	seenTeams := make(map[int]bool, len(teams))
	for _, tm := range sortedTeams(teams) {
		if seenTeams[tm.ID] {
			addf("team %d is listed more than once", tm.ID)
			continue
		}
		seenTeams[tm.ID] = true
		switch {
		case strings.TrimSpace(tm.Region) == "":
			addf("team %d (%s) has no region", tm.ID, tm.SchoolName)
		case !declared[tm.Region]:
			addf("team %d (%s) is in undeclared region %q", tm.ID, tm.SchoolName, tm.Region)
		case tm.Seed <= 0:
			addf("team %d (%s) has invalid seed %d", tm.ID, tm.SchoolName, tm.Seed)
		default:
			byRegion[tm.Region] = append(byRegion[tm.Region], tm)
		}
	}
	// Region checks would only echo misplaced teams; report those first.
	if len(errs) > 0 {
		return errs
	}

	size, sizeRegion, playIns := 0, "", 0
	visited := make(map[string]bool, len(t.Regions))
	for _, region := range t.Regions {
		if visited[region] || strings.TrimSpace(region) == "" {
			continue
		}
		visited[region] = true

		regionTeams := byRegion[region]
		if len(regionTeams) == 0 {
			addf("region %q has no teams", region)
			shapeOK = false
			continue
		}

		n, pairs, ok := validateRegion(region, regionTeams, t.FirstFour, addf)
		playIns += pairs
		if !ok {
			shapeOK = false
			continue
		}
		if size == 0 {
			size, sizeRegion = n, region
		} else if n != size {
			addf("region %q has %d seeds but region %q has %d; all regions must be the same size", region, n, sizeRegion, size)
			shapeOK = false
		}
	}

	if !shapeOK {
		return errs
	}
	if t.FirstFour && playIns == 0 {
		addf("first four is declared but no region has a play-in pair")
		return errs
	}
	if expected := len(roundsFor(size, len(t.Regions), t.FirstFour)); t.NumRounds != expected {
		addf("tournament declares %d rounds but its teams imply %d", t.NumRounds, expected)
	}
	return errs
}

// validateRegion checks seeds and team count of one region. It returns the number of
// distinct seeds, the number of play-in pairs and whether the region is usable.
func validateRegion(region string, teams []*models.Team, firstFour bool, addf func(string, ...any)) (int, int, bool) {
	counts := make(map[int]int)
	for _, tm := range teams {
		counts[tm.Seed]++
	}
	seeds := make([]int, 0, len(counts))
	for s := range counts {
		seeds = append(seeds, s)
	}
	sort.Ints(seeds)

	ok := true
	pairs := 0
	for _, s := range seeds {
		switch c := counts[s]; {
		case c > 2:
			addf("region %q: seed %d is assigned to %d teams", region, s, c)
			ok = false
		case c == 2 && !firstFour:
			addf("region %q: seed %d is assigned to 2 teams but the tournament declares no first four", region, s)
			ok = false
		case c == 2:
			pairs++
		}
	}
	if !ok {
		return len(seeds), pairs, false
	}

	if !firstFour && !isPowerOfTwo(len(teams)) {
		addf("region %q has %d teams, which is not a power of two, and no first-four play-ins are declared", region, len(teams))
		return len(seeds), pairs, false
	}

	n := len(seeds)
	if n < 2 || n > maxRegionSeeds || !isPowerOfTwo(n) {
		addf("region %q has %d distinct seeds; expected a power of two between 2 and %d", region, n, maxRegionSeeds)
		return n, pairs, false
	}
	if seeds[n-1] != n {
		missing := make([]string, 0)
		for s := 1; s <= n; s++ {
			if counts[s] == 0 {
				missing = append(missing, fmt.Sprint(s))
			}
		}
		addf("region %q seeds must run from 1 to %d; missing %s", region, n, strings.Join(missing, ", "))
		return n, pairs, false
	}
	return n, pairs, true
}

func sortedTeams(teams []*models.Team) []*models.Team {
	sorted := make([]*models.Team, 0, len(teams))
	for _, tm := range teams {
		if tm != nil {
			sorted = append(sorted, tm)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
