package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	timeRangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)
	clockPattern     = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseTimeRange parses a kickoff window into minutes after midnight.
//
// Supported formats:
//   - "18:00-23:00" - Both bounds
//   - "18:00-" - From 18:00 until midnight
//   - "-16:00" - Until 16:00
//
// Returns (from, to, error). An open bound is nil.
func ParseTimeRange(input string) (*int, *int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("time range cannot be empty")
	}

	// Format 1: "18:00-23:00"
	if m := timeRangePattern.FindStringSubmatch(input); m != nil {
		from, err := clockMinutes(m[1], m[2])
		if err != nil {
			return nil, nil, err
		}
		to, err := clockMinutes(m[3], m[4])
		if err != nil {
			return nil, nil, err
		}
		if from > to {
			return nil, nil, fmt.Errorf("start time must be before end time")
		}
		return &from, &to, nil
	}

	// Format 2: "18:00-"
	if strings.HasSuffix(input, "-") {
		from, err := parseClock(strings.TrimSpace(strings.TrimSuffix(input, "-")))
		if err != nil {
			return nil, nil, err
		}
		return &from, nil, nil
	}

	// Format 3: "-16:00"
	if strings.HasPrefix(input, "-") {
		to, err := parseClock(strings.TrimSpace(strings.TrimPrefix(input, "-")))
		if err != nil {
			return nil, nil, err
		}
		return nil, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid time range format. Use '18:00-23:00', '18:00-' or '-16:00'")
}

func parseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time: %q", s)
	}
	return clockMinutes(m[1], m[2])
}

func clockMinutes(h, m string) (int, error) {
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("invalid time: %s:%s", h, m)
	}
	return hour*60 + minute, nil
}
