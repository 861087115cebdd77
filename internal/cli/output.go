package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pfrederiksen/filgoal/internal/calendar"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

func parseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range allowed {
		if format == f {
			return format, nil
		}
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = "'" + string(f) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", s, strings.Join(names, ", "))
}

// MatchesResult is one day's matches as written by the matches command
type MatchesResult struct {
	Date      string        `json:"date"`
	FetchedAt time.Time     `json:"fetched_at"`
	Count     int           `json:"count"`
	Matches   []match.Match `json:"matches"`
}

// WriteMatches writes the result in the specified format
func WriteMatches(w io.Writer, result *MatchesResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeMatchesText(w, result, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Matches, result.Date))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteArticles writes articles as JSON (an object for one article, an array
// otherwise) or as readable text.
func WriteArticles(w io.Writer, articles []match.Article, format OutputFormat, single bool) error {
	switch format {
	case FormatJSON:
		if single && len(articles) == 1 {
			return writeJSON(w, articles[0])
		}
		return writeJSON(w, articles)
	case FormatText:
		for i, a := range articles {
			if i > 0 {
				fmt.Fprintln(w, strings.Repeat("-", 40))
			}
			writeArticleText(w, a)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteIDs writes article ids one per line, or as a JSON array.
func WriteIDs(w io.Writer, ids []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, ids)
	case FormatText:
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON with Arabic text left readable
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeMatchesText prints one aligned table per league, in the order leagues
// first appear.
func writeMatchesText(w io.Writer, result *MatchesResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintf(w, "No matches found for %s.\n", result.Date)
		return nil
	}

	var leagues []string
	byLeague := make(map[string][]match.Match)
	for _, m := range result.Matches {
		if _, ok := byLeague[m.League]; !ok {
			leagues = append(leagues, m.League)
		}
		byLeague[m.League] = append(byLeague[m.League], m)
	}

	for _, league := range leagues {
		matches := byLeague[league]
		fmt.Fprintf(w, "\n%s (%d):\n", league, len(matches))

		rows := make([][]string, len(matches))
		for i, m := range matches {
			rows[i] = []string{
				orDash(m.Kickoff),
				orDash(m.HomeTeam),
				m.HomeScore + " - " + m.AwayScore,
				orDash(m.AwayTeam),
				orDash(m.Status),
			}
		}

		for i, line := range alignRows(rows) {
			fmt.Fprintf(w, "  %s\n", line)
			if verbose {
				m := matches[i]
				fmt.Fprintf(w, "       ID: %s\n", m.ID)
				if m.Stadium != nil {
					fmt.Fprintf(w, "       Stadium: %s\n", *m.Stadium)
				}
				if m.Channel != nil {
					fmt.Fprintf(w, "       Channel: %s\n", *m.Channel)
				}
				fmt.Fprintf(w, "       URL: %s\n", m.URL)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d matches on %s\n", result.Count, result.Date)

	return nil
}

// alignRows pads every column to its widest cell by display width.
func alignRows(rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		lines[r] = strings.Join(cells, "  ")
	}
	return lines
}

func writeArticleText(w io.Writer, a match.Article) {
	fmt.Fprintln(w, orDash(a.Title))

	var meta []string
	if a.Date != nil {
		meta = append(meta, *a.Date)
	}
	if a.Author != nil {
		meta = append(meta, *a.Author)
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, strings.Join(meta, " | "))
	}
	fmt.Fprintln(w, a.URL)
	if a.Image != nil {
		fmt.Fprintf(w, "Image: %s\n", *a.Image)
	}
	if a.Content != nil {
		fmt.Fprintf(w, "\n%s\n", *a.Content)
	}
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
