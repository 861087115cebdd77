package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date form accepted from callers: YYYY-MM-DD.
const DateLayout = "2006-01-02"

var kickoffPattern = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)

// ValidateDate checks that date is a real calendar day in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	return nil
}

// Today returns now formatted as a match date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// KickoffAt combines a match date with the kickoff text shown on the page.
// Accepts "20:00", "8:00 م" (pm) and "8:00 ص" (am), in Western or
// Arabic-Indic digits. Returns time.Time{} (zero value) if either part does
// not parse.
func KickoffAt(date, kickoff string, loc *time.Location) time.Time {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}
	}

	text := normalizeDigits(kickoff)
	m := kickoffPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	switch {
	case strings.Contains(text, "م") && hour < 12:
		hour += 12
	case strings.Contains(text, "ص") && hour == 12:
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return time.Time{}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

// normalizeDigits maps Arabic-Indic and Eastern Arabic-Indic digits to ASCII
func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// KickoffMinutes returns the kickoff as minutes after midnight. ok is false
// when the kickoff text does not parse.
func (m Match) KickoffMinutes() (minutes int, ok bool) {
	t := KickoffAt("2000-01-01", Value(m.Kickoff), time.UTC)
	if t.IsZero() {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
