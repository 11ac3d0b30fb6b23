package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/skeleton-pawn/stweb/internal/studyday"
)

// StreakInfo is the response for the streak endpoint. MissedDays is
// every date in [first recorded date, today] with no sessions, most
// recent first.
type StreakInfo struct {
	StreakDays int      `json:"streak_days"`
	MissedDays []string `json:"missed_days"`
	Message    string   `json:"message"`
}

// StreakInfo computes the current streak and missed days from the
// full set of distinct study dates.
func (a *Analytics) StreakInfo(ctx context.Context) (StreakInfo, error) {
	dates, err := a.store.DistinctDates(ctx)
	if err != nil {
		return StreakInfo{}, fmt.Errorf("loading study dates: %w", err)
	}

	today := a.Today()
	streak, missed := computeStreak(dates, today)

	return StreakInfo{
		StreakDays: streak,
		MissedDays: missed,
		Message:    a.messages.streak(dates, today, streak),
	}, nil
}

// computeStreak returns the consecutive-day streak ending at today
// and the missed days within [min(dates), today], descending. The
// dates slice must be ascending; an empty slice yields (0, []).
func computeStreak(dates []string, today string) (int, []string) {
	missed := []string{}
	if len(dates) == 0 {
		return 0, missed
	}

	studied := make(map[string]bool, len(dates))
	for _, d := range dates {
		studied[d] = true
	}

	streak := 0
	if studied[today] {
		day, err := time.Parse(studyday.DateFormat, today)
		if err == nil {
			for {
				if !studied[day.Format(studyday.DateFormat)] {
					break
				}
				streak++
				day = day.AddDate(0, 0, -1)
			}
		}
	}

	first, err := time.Parse(studyday.DateFormat, dates[0])
	if err != nil {
		return streak, missed
	}
	end, err := time.Parse(studyday.DateFormat, today)
	if err != nil {
		return streak, missed
	}
	for day := end; !day.Before(first); day = day.AddDate(0, 0, -1) {
		if d := day.Format(studyday.DateFormat); !studied[d] {
			missed = append(missed, d)
		}
	}
	return streak, missed
}

// daysBetween returns the whole days from a to b, both study-date
// strings. Malformed input yields 0.
func daysBetween(a, b string) int {
	ta, err := time.Parse(studyday.DateFormat, a)
	if err != nil {
		return 0
	}
	tb, err := time.Parse(studyday.DateFormat, b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
