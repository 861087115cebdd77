package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/filgoal/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDocument SortOrder = "document"
	SortByLeague   SortOrder = "league"
	SortByKickoff  SortOrder = "kickoff"
)

func parseSortOrder(s string) (SortOrder, bool) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "", SortByDocument:
		return SortByDocument, true
	case SortByLeague, SortByKickoff:
		return order, true
	default:
		return "", false
	}
}

// sortMatches sorts matches in place. Ties keep page order.
func sortMatches(matches []match.Match, order SortOrder) {
	switch order {
	case SortByLeague:
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].League != matches[j].League {
				return matches[i].League < matches[j].League
			}
			// If leagues are equal, sort by kickoff
			return compareByKickoff(matches[i], matches[j])
		})
	case SortByKickoff:
		sort.SliceStable(matches, func(i, j int) bool {
			return compareByKickoff(matches[i], matches[j])
		})
	}
}

// compareByKickoff reports whether i kicks off before j. Matches without a
// readable kickoff time sort last.
func compareByKickoff(i, j match.Match) bool {
	ki, okI := i.KickoffMinutes()
	kj, okJ := j.KickoffMinutes()

	if okI && okJ {
		return ki < kj
	}
	return okI && !okJ
}
