package filter

import "testing"

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantFrom int // -1 for open
		wantTo   int // -1 for open
	}{
		{name: "both bounds", input: "18:00-23:00", wantFrom: 18 * 60, wantTo: 23 * 60},
		{name: "spaces and short hour", input: " 9:30 - 12:15 ", wantFrom: 9*60 + 30, wantTo: 12*60 + 15},
		{name: "open end", input: "18:00-", wantFrom: 18 * 60, wantTo: -1},
		{name: "open start", input: "-16:00", wantFrom: -1, wantTo: 16 * 60},
		{name: "empty", input: "", wantErr: true},
		{name: "reversed", input: "23:00-18:00", wantErr: true},
		{name: "bad hour", input: "25:00-26:00", wantErr: true},
		{name: "bad minute", input: "18:60-", wantErr: true},
		{name: "words", input: "evening", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ParseTimeRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := deref(from); got != tt.wantFrom {
				t.Errorf("from = %d, want %d", got, tt.wantFrom)
			}
			if got := deref(to); got != tt.wantTo {
				t.Errorf("to = %d, want %d", got, tt.wantTo)
			}
		})
	}
}

func deref(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}
