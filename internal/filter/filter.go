// Package filter narrows a day's matches down to the ones a user cares about.
//
// Criteria combine with AND; within one criterion any listed value may match:
//   - Leagues (substring of the league name, case-insensitive)
//   - Teams (substring of either team name, case-insensitive)
//   - Channels (substring of the broadcast channel, case-insensitive)
//   - Kickoff window (from/to, minutes after midnight)
//   - Scored only (both sides carry a score)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Teams = []string{"الأهلي"}
//	from, to, _ := filter.ParseTimeRange("18:00-23:00")
//	f.KickoffFrom, f.KickoffTo = from, to
//
//	filtered := f.Apply(matches)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/filgoal/internal/match"
)

// Filter represents match filtering criteria
type Filter struct {
	Leagues  []string `json:"leagues,omitempty"`
	Teams    []string `json:"teams,omitempty"`
	Channels []string `json:"channels,omitempty"`

	// Kickoff window in minutes after midnight, inclusive
	KickoffFrom *int `json:"kickoff_from,omitempty"`
	KickoffTo   *int `json:"kickoff_to,omitempty"`

	ScoredOnly bool `json:"scored_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{
		Leagues:  []string{},
		Teams:    []string{},
		Channels: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all matches.
func (f *Filter) IsEmpty() bool {
	return len(f.Leagues) == 0 &&
		len(f.Teams) == 0 &&
		len(f.Channels) == 0 &&
		f.KickoffFrom == nil &&
		f.KickoffTo == nil &&
		!f.ScoredOnly
}

// Matches checks if a match passes all active filter criteria.
// A match whose kickoff time cannot be read fails any kickoff window.
func (f *Filter) Matches(m match.Match) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Leagues) > 0 && !containsAny(m.League, f.Leagues) {
		return false
	}

	if len(f.Teams) > 0 &&
		!containsAny(match.Value(m.HomeTeam), f.Teams) &&
		!containsAny(match.Value(m.AwayTeam), f.Teams) {
		return false
	}

	if len(f.Channels) > 0 && !containsAny(match.Value(m.Channel), f.Channels) {
		return false
	}

	if f.KickoffFrom != nil || f.KickoffTo != nil {
		minutes, ok := m.KickoffMinutes()
		if !ok {
			return false
		}
		if f.KickoffFrom != nil && minutes < *f.KickoffFrom {
			return false
		}
		if f.KickoffTo != nil && minutes > *f.KickoffTo {
			return false
		}
	}

	if f.ScoredOnly && !m.HasScore() {
		return false
	}

	return true
}

// Apply returns only the matches that pass the filter, keeping their order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(matches []match.Match) []match.Match {
	if f.IsEmpty() {
		return matches
	}

	filtered := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if f.Matches(m) {
			filtered = append(filtered, m)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Leagues: الدوري المصري | Teams: الأهلي | Kickoff: 18:00-23:00"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Leagues) > 0 {
		parts = append(parts, fmt.Sprintf("Leagues: %s", strings.Join(f.Leagues, ", ")))
	}

	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}

	if len(f.Channels) > 0 {
		parts = append(parts, fmt.Sprintf("Channels: %s", strings.Join(f.Channels, ", ")))
	}

	if f.KickoffFrom != nil || f.KickoffTo != nil {
		from, to := 0, 23*60+59
		if f.KickoffFrom != nil {
			from = *f.KickoffFrom
		}
		if f.KickoffTo != nil {
			to = *f.KickoffTo
		}
		parts = append(parts, fmt.Sprintf("Kickoff: %s-%s", formatMinutes(from), formatMinutes(to)))
	}

	if f.ScoredOnly {
		parts = append(parts, "Scored only")
	}

	return strings.Join(parts, " | ")
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
