package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name       string
		dates      []string
		today      string
		wantStreak int
		wantMissed []string
	}{
		{
			name:       "empty history",
			dates:      nil,
			today:      "2024-01-04",
			wantStreak: 0,
			wantMissed: []string{},
		},
		{
			name:       "gap breaks backward run",
			dates:      []string{"2024-01-01", "2024-01-02", "2024-01-04"},
			today:      "2024-01-04",
			wantStreak: 1,
			wantMissed: []string{"2024-01-03"},
		},
		{
			name: "unbroken run",
			dates: []string{
				"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
			},
			today:      "2024-01-04",
			wantStreak: 4,
			wantMissed: []string{},
		},
		{
			name:       "today not studied",
			dates:      []string{"2024-01-01", "2024-01-02"},
			today:      "2024-01-04",
			wantStreak: 0,
			wantMissed: []string{"2024-01-04", "2024-01-03"},
		},
		{
			name:       "single day history is today",
			dates:      []string{"2024-01-04"},
			today:      "2024-01-04",
			wantStreak: 1,
			wantMissed: []string{},
		},
		{
			name:       "streak spans month boundary",
			dates:      []string{"2024-02-28", "2024-02-29", "2024-03-01"},
			today:      "2024-03-01",
			wantStreak: 3,
			wantMissed: []string{},
		},
		{
			name: "missed days are descending over the full range",
			dates: []string{
				"2024-01-01", "2024-01-04", "2024-01-05",
			},
			today:      "2024-01-07",
			wantStreak: 0,
			wantMissed: []string{
				"2024-01-07", "2024-01-06", "2024-01-03", "2024-01-02",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, missed := computeStreak(tt.dates, tt.today)
			assert.Equal(t, tt.wantStreak, streak)
			if diff := cmp.Diff(tt.wantMissed, missed); diff != "" {
				t.Errorf("missed days mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Missed days plus studied days must partition [first date, today].
func TestComputeStreakMissedComplement(t *testing.T) {
	dates := []string{
		"2024-01-02", "2024-01-05", "2024-01-06", "2024-01-09",
	}
	today := "2024-01-10"
	_, missed := computeStreak(dates, today)

	assert.Len(t, missed, 9-len(dates))
	seen := make(map[string]bool)
	for _, d := range dates {
		seen[d] = true
	}
	for _, d := range missed {
		assert.False(t, seen[d], "studied day %s reported as missed", d)
		assert.GreaterOrEqual(t, d, dates[0])
		assert.LessOrEqual(t, d, today)
	}
}

func TestStreakMessage(t *testing.T) {
	m := DefaultMessages()

	tests := []struct {
		name   string
		dates  []string
		today  string
		streak int
		want   string
	}{
		{
			name:  "no sessions",
			today: "2024-01-04",
			want:  m.NoSessions,
		},
		{
			name:   "active streak",
			dates:  []string{"2024-01-03", "2024-01-04"},
			today:  "2024-01-04",
			streak: 2,
			want:   "You're on a 2-day streak!",
		},
		{
			name:  "rested exactly one day",
			dates: []string{"2024-01-03"},
			today: "2024-01-04",
			want:  m.RestedYesterday,
		},
		{
			name:  "longer gap",
			dates: []string{"2024-01-01"},
			today: "2024-01-04",
			want:  "3 days since your last session. Come back!",
		},
		{
			// streak 0 with the last date not before today is
			// unreachable from computeStreak; the fallback must
			// still answer.
			name:  "inconsistent input falls back to neutral",
			dates: []string{"2024-01-04"},
			today: "2024-01-04",
			want:  m.Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.streak(tt.dates, tt.today, tt.streak)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMotivationMessage(t *testing.T) {
	m := DefaultMessages()

	tests := []struct {
		name      string
		today     float64
		yesterday float64
		want      string
	}{
		{"nothing either day", 0, 0, m.StartToday},
		{"fresh start after rest day", 2.5, 0, m.FreshStart},
		{"ahead of yesterday", 3.0, 1.5, "You're ahead of yesterday (+1.5 hours)!"},
		{"behind yesterday", 1.0, 2.2, "You can catch up (-1.2 hours vs yesterday)!"},
		{"dead heat is silent", 2.0, 2.0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.motivation(tt.today, tt.yesterday))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween("2024-01-04", "2024-01-04"))
	assert.Equal(t, 1, daysBetween("2024-01-03", "2024-01-04"))
	assert.Equal(t, 31, daysBetween("2024-01-01", "2024-02-01"))
	assert.Equal(t, -1, daysBetween("2024-01-04", "2024-01-03"))
	assert.Equal(t, 0, daysBetween("not-a-date", "2024-01-03"))
}
