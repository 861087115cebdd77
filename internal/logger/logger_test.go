package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q (%v)", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "matches fetched",
			fields:  Fields{"date": "2026-10-18", "count": 3},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "fetch failed",
			err:     errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !tt.want {
				return
			}

			entry := decodeLines(t, &buf)[0]
			if entry["message"] != tt.message {
				t.Errorf("message = %v, want %v", entry["message"], tt.message)
			}
			if entry["level"] != strings.ToLower(string(tt.level)) {
				t.Errorf("level = %v, want %v", entry["level"], strings.ToLower(string(tt.level)))
			}
			if _, ok := entry["time"]; !ok {
				t.Error("entry has no timestamp")
			}
			for k := range tt.fields {
				if _, ok := entry[k]; !ok {
					t.Errorf("field %q missing from %v", k, entry)
				}
			}
			if tt.err != nil && entry["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %v", entry["error"], tt.err)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"Error":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(LevelInfo, &buf).Info("server started", Fields{"port": "8000"})

	out := buf.String()
	if !strings.Contains(out, "server started") || !strings.Contains(out, "8000") {
		t.Errorf("console output = %q", out)
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("extract.matches")
	m.IncrCounter("extract.matches")
	m.AddCounter("extract.matches", 3)

	if got := m.Snapshot().Counters["extract.matches"]; got != 5 {
		t.Errorf("Counter = %v, want 5", got)
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch.matches", 100*time.Millisecond)
	m.RecordTiming("fetch.matches", 200*time.Millisecond)
	m.RecordTiming("fetch.matches", 150*time.Millisecond)

	stats := m.Snapshot().Timings["fetch.matches"]
	if stats.Count != 3 {
		t.Errorf("Timing count = %v, want 3", stats.Count)
	}
	if stats.Min != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", stats.Min)
	}
	if stats.Max != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", stats.Max)
	}
	if stats.Average != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", stats.Average)
	}
}

func TestMetrics_TimingManySamples(t *testing.T) {
	m := NewMetrics()

	for i := 1; i <= 10000; i++ {
		m.RecordTiming("http.request", time.Duration(i)*time.Millisecond)
	}

	stats := m.Snapshot().Timings["http.request"]
	if stats.Count != 10000 {
		t.Errorf("Timing count = %v, want 10000", stats.Count)
	}
	if stats.Min != "1ms" {
		t.Errorf("Min timing = %v, want 1ms", stats.Min)
	}
	if stats.Max != "10s" {
		t.Errorf("Max timing = %v, want 10s", stats.Max)
	}
	if stats.Average != "5.0005s" {
		t.Errorf("Average timing = %v, want 5.0005s", stats.Average)
	}
	if stats.Total != (50005 * time.Second).String() {
		t.Errorf("Total timing = %v, want %v", stats.Total, 50005*time.Second)
	}
	if len(m.timings) != 1 {
		t.Errorf("tracked %d timings, want 1", len(m.timings))
	}
}

func TestMetrics_SnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("a")

	snap := m.Snapshot()
	m.IncrCounter("a")

	if snap.Counters["a"] != 1 {
		t.Errorf("snapshot changed after update: %v", snap.Counters["a"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if lines := decodeLines(t, &buf); len(lines) != 4 {
		t.Errorf("got %d log lines, want 4", len(lines))
	}

	IncrCounter("test")
	AddCounter("test", 2)
	RecordTiming("test", time.Second)

	snap := MetricsSnapshot()
	if snap.Counters["test"] < 3 {
		t.Errorf("counter test = %v, want >= 3", snap.Counters["test"])
	}
}
