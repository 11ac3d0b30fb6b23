package analytics

import "fmt"

// Messages holds the feedback message templates. Streak and ComeBack
// take a day count via %d; AheadOfYesterday and BehindYesterday take
// an hour delta via %.1f. Historical deployments diverged on wording,
// so templates are configuration rather than constants.
type Messages struct {
	// Streak feedback.
	NoSessions      string `json:"no_sessions"`
	Streak          string `json:"streak"`
	RestedYesterday string `json:"rested_yesterday"`
	ComeBack        string `json:"come_back"`
	Neutral         string `json:"neutral"`

	// Today-vs-yesterday motivation.
	StartToday       string `json:"start_today"`
	FreshStart       string `json:"fresh_start"`
	AheadOfYesterday string `json:"ahead_of_yesterday"`
	BehindYesterday  string `json:"behind_yesterday"`
}

// DefaultMessages returns the stock message set.
func DefaultMessages() Messages {
	return Messages{
		NoSessions:      "No sessions yet. Start studying today!",
		Streak:          "You're on a %d-day streak!",
		RestedYesterday: "You rested yesterday. Start again today!",
		ComeBack:        "%d days since your last session. Come back!",
		Neutral:         "Keep going!",

		StartToday:       "Start studying today!",
		FreshStart:       "A fresh start. Good luck today!",
		AheadOfYesterday: "You're ahead of yesterday (+%.1f hours)!",
		BehindYesterday:  "You can catch up (-%.1f hours vs yesterday)!",
	}
}

// streak selects the feedback message for a streak computation.
// Precedence: empty history, active streak, rested exactly one day,
// longer gap. A zero streak with the last date not strictly before
// today cannot happen given computeStreak, but falls back to the
// neutral message rather than crashing.
func (m Messages) streak(dates []string, today string, streak int) string {
	if len(dates) == 0 {
		return m.NoSessions
	}
	if streak > 0 {
		return fmt.Sprintf(m.Streak, streak)
	}
	gap := daysBetween(dates[len(dates)-1], today)
	switch {
	case gap == 1:
		return m.RestedYesterday
	case gap > 1:
		return fmt.Sprintf(m.ComeBack, gap)
	default:
		return m.Neutral
	}
}

// motivation compares today's hours against yesterday's. Returns ""
// when the totals are equal and both days were studied; the caller
// omits the field.
func (m Messages) motivation(todayHours, yesterdayHours float64) string {
	if yesterdayHours == 0 {
		if todayHours > 0 {
			return m.FreshStart
		}
		return m.StartToday
	}
	switch {
	case todayHours > yesterdayHours:
		return fmt.Sprintf(m.AheadOfYesterday, todayHours-yesterdayHours)
	case todayHours < yesterdayHours:
		return fmt.Sprintf(m.BehindYesterday, yesterdayHours-todayHours)
	}
	return ""
}
