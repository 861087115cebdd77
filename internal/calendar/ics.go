// Package calendar exports a day's matches as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/filgoal/internal/match"
)

// MatchDuration is the block each fixture occupies in the calendar.
const MatchDuration = 2 * time.Hour

// SiteLocation is the zone kickoff times on the site are given in.
var SiteLocation = loadSiteLocation()

func loadSiteLocation() *time.Location {
	loc, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		return time.FixedZone("EET", 2*60*60)
	}
	return loc
}

// GenerateICS builds a calendar for the matches of date, reading kickoff
// times in SiteLocation.
func GenerateICS(matches []match.Match, date string) string {
	return GenerateICSIn(matches, date, SiteLocation)
}

// GenerateICSIn is GenerateICS with an explicit zone. Matches whose kickoff
// time does not parse are left out; if none remain the result is empty.
func GenerateICSIn(matches []match.Match, date string, loc *time.Location) string {
	var events strings.Builder
	now := time.Now().UTC()

	for _, m := range matches {
		start := match.KickoffAt(date, match.Value(m.Kickoff), loc)
		if start.IsZero() {
			continue
		}
		writeEvent(&events, m, start, now)
	}

	if events.Len() == 0 {
		return ""
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//FilGoal//filgoal//AR\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS("FilGoal "+date)))
	ics.WriteString(events.String())
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeEvent(ics *strings.Builder, m match.Match, start, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@filgoal.com\r\n", m.ID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(MatchDuration))))
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary(m))))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(m))))

	if m.Stadium != nil {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(*m.Stadium)))
	}
	if m.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", m.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func summary(m match.Match) string {
	home, away := teamOrUnknown(m.HomeTeam), teamOrUnknown(m.AwayTeam)
	if m.HasScore() {
		return fmt.Sprintf("%s %s - %s %s", home, m.HomeScore, m.AwayScore, away)
	}
	return fmt.Sprintf("%s - %s", home, away)
}

func description(m match.Match) string {
	lines := []string{m.League}
	if m.Status != nil {
		lines = append(lines, *m.Status)
	}
	if m.Channel != nil {
		lines = append(lines, *m.Channel)
	}
	return strings.Join(lines, "\n")
}

func teamOrUnknown(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
