package match

import "fmt"

// ChangeKind names what changed about a match between two snapshots.
type ChangeKind string

const (
	ChangeNew     ChangeKind = "new"
	ChangeRemoved ChangeKind = "removed"
	ChangeKickoff ChangeKind = "kickoff"
	ChangeStatus  ChangeKind = "status"
	ChangeScore   ChangeKind = "score"
)

// Change represents a difference detected for one match
type Change struct {
	MatchID  string     `json:"match_id"`
	Kind     ChangeKind `json:"kind"`
	OldValue string     `json:"old_value"`
	NewValue string     `json:"new_value"`
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeNew:
		return fmt.Sprintf("%s: new match %s", c.MatchID, c.NewValue)
	case ChangeRemoved:
		return fmt.Sprintf("%s: removed %s", c.MatchID, c.OldValue)
	default:
		return fmt.Sprintf("%s: %s %s -> %s", c.MatchID, c.Kind, orNone(c.OldValue), orNone(c.NewValue))
	}
}

// Title returns "home - away" with "?" for a missing side.
func (m Match) Title() string {
	return fmt.Sprintf("%s - %s", orUnknown(m.HomeTeam), orUnknown(m.AwayTeam))
}

// Score returns "home-away" using the stored score text.
func (m Match) Score() string {
	return m.HomeScore + "-" + m.AwayScore
}

// Diff compares the current matches of a day against a previous snapshot of
// the same day. Changes follow the order of current, with removed matches
// listed last in the order of previous.
func Diff(previous, current []Match) []Change {
	changes := make([]Change, 0)

	old := make(map[string]Match, len(previous))
	for _, m := range previous {
		old[m.ID] = m
	}

	seen := make(map[string]bool, len(current))
	for _, m := range current {
		seen[m.ID] = true
		prev, ok := old[m.ID]
		if !ok {
			changes = append(changes, Change{MatchID: m.ID, Kind: ChangeNew, NewValue: m.Title()})
			continue
		}
		changes = append(changes, DetectChanges(prev, m)...)
	}

	for _, m := range previous {
		if !seen[m.ID] {
			changes = append(changes, Change{MatchID: m.ID, Kind: ChangeRemoved, OldValue: m.Title()})
		}
	}

	return changes
}

// DetectChanges compares two versions of the same match.
func DetectChanges(previous, current Match) []Change {
	var changes []Change

	if Value(previous.Kickoff) != Value(current.Kickoff) {
		changes = append(changes, Change{
			MatchID:  current.ID,
			Kind:     ChangeKickoff,
			OldValue: Value(previous.Kickoff),
			NewValue: Value(current.Kickoff),
		})
	}

	if Value(previous.Status) != Value(current.Status) {
		changes = append(changes, Change{
			MatchID:  current.ID,
			Kind:     ChangeStatus,
			OldValue: Value(previous.Status),
			NewValue: Value(current.Status),
		})
	}

	if previous.Score() != current.Score() {
		changes = append(changes, Change{
			MatchID:  current.ID,
			Kind:     ChangeScore,
			OldValue: previous.Score(),
			NewValue: current.Score(),
		})
	}

	return changes
}

func orUnknown(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
