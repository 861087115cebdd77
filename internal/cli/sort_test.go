package cli

import (
	"testing"

	"github.com/pfrederiksen/filgoal/internal/match"
)

func ids(matches []match.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func sortFixture() []match.Match {
	return []match.Match{
		{ID: "1", League: "كأس مصر", Kickoff: match.Optional("21:00")},
		{ID: "2", League: "الدوري المصري", Kickoff: match.Optional("8:00 م")},
		{ID: "3", League: "الدوري المصري"},
		{ID: "4", League: "كأس مصر", Kickoff: match.Optional("17:30")},
		{ID: "5", League: "الدوري المصري", Kickoff: match.Optional("١٩:٠٠")},
	}
}

func TestSortMatches(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByDocument, []string{"1", "2", "3", "4", "5"}},
		{SortByKickoff, []string{"4", "5", "2", "1", "3"}},
		{SortByLeague, []string{"5", "2", "3", "4", "1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			matches := sortFixture()
			sortMatches(matches, tt.order)

			got := ids(matches)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("sortMatches(%s) = %v, want %v", tt.order, got, tt.want)
				}
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want SortOrder
		ok   bool
	}{
		{"", SortByDocument, true},
		{"Kickoff", SortByKickoff, true},
		{" league ", SortByLeague, true},
		{"date", "", false},
	}
	for _, tt := range tests {
		got, ok := parseSortOrder(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSortOrder(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
