// Package analytics derives daily, windowed, and streak statistics
// from the study-session record store. Everything here is a pure
// function of data read from the store per call; no results are
// cached between requests.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/skeleton-pawn/stweb/internal/db"
	"github.com/skeleton-pawn/stweb/internal/studyday"
)

// Store is the record-store query surface the analytics consume.
// *db.DB satisfies it.
type Store interface {
	SumDuration(ctx context.Context, f db.DateFilter) (int64, error)
	SumDurationBySubject(ctx context.Context, f db.DateFilter) (map[string]int64, error)
	SumDurationByDate(ctx context.Context, f db.DateFilter) (map[string]int64, error)
	DistinctDates(ctx context.Context) ([]string, error)
}

// Options configures an Analytics instance. All fields are required
// except Now, which defaults to time.Now.
type Options struct {
	Subjects   []string
	CutoffHour int
	Location   *time.Location
	Windows    []int // trailing comparison windows, in days
	Messages   Messages
	Now        func() time.Time
}

// Analytics computes statistics over a Store. Construct with New;
// the zero value is not usable.
type Analytics struct {
	store      Store
	subjects   []string
	cutoffHour int
	loc        *time.Location
	windows    []int
	messages   Messages
	now        func() time.Time
}

// New creates an Analytics bound to the given store.
func New(store Store, opts Options) *Analytics {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Analytics{
		store:      store,
		subjects:   opts.Subjects,
		cutoffHour: opts.CutoffHour,
		loc:        opts.Location,
		windows:    opts.Windows,
		messages:   opts.Messages,
		now:        now,
	}
}

// Today returns the current study date under the configured cutoff.
func (a *Analytics) Today() string {
	return studyday.StudyDate(a.now(), a.cutoffHour, a.loc)
}

// Yesterday returns the study date before the current one.
func (a *Analytics) Yesterday() string {
	return studyday.Yesterday(a.now(), a.cutoffHour, a.loc)
}

// Location returns the configured timezone.
func (a *Analytics) Location() *time.Location {
	return a.loc
}

// CutoffHour returns the configured day-boundary hour.
func (a *Analytics) CutoffHour() int {
	return a.cutoffHour
}

// Subjects returns the configured subject enumeration.
func (a *Analytics) Subjects() []string {
	return a.subjects
}

// round2 rounds to 2 decimal places. Applied only when materializing
// presentation values, never before summation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SubjectTime is a per-subject duration in presentation units.
type SubjectTime struct {
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// TodayStats is the response for the today-stats endpoint.
type TodayStats struct {
	Date              string                 `json:"date"`
	TotalHours        float64                `json:"total_hours"`
	SubjectTimes      map[string]SubjectTime `json:"subject_times"`
	CurrentTime       string                 `json:"current_time"`
	MotivationMessage string                 `json:"motivation_message,omitempty"`
}

// TodayStats sums today's sessions per subject and attaches a
// motivational message comparing against yesterday's total.
func (a *Analytics) TodayStats(ctx context.Context) (TodayStats, error) {
	today := a.Today()
	yesterday := a.Yesterday()

	todaySecs, err := a.store.SumDuration(ctx, db.DateFilter{Date: today})
	if err != nil {
		return TodayStats{}, fmt.Errorf("summing today: %w", err)
	}
	yesterdaySecs, err := a.store.SumDuration(ctx, db.DateFilter{Date: yesterday})
	if err != nil {
		return TodayStats{}, fmt.Errorf("summing yesterday: %w", err)
	}
	bySubject, err := a.store.SumDurationBySubject(
		ctx, db.DateFilter{Date: today},
	)
	if err != nil {
		return TodayStats{}, fmt.Errorf("summing today by subject: %w", err)
	}

	subjectTimes := make(map[string]SubjectTime, len(bySubject))
	for subject, secs := range bySubject {
		subjectTimes[subject] = SubjectTime{
			Minutes: round2(float64(secs) / 60),
			Hours:   round2(float64(secs) / 3600),
		}
	}

	todayHours := float64(todaySecs) / 3600
	yesterdayHours := float64(yesterdaySecs) / 3600

	return TodayStats{
		Date:         today,
		TotalHours:   round2(todayHours),
		SubjectTimes: subjectTimes,
		CurrentTime:  a.now().In(a.loc).Format("15:04:05"),
		MotivationMessage: a.messages.motivation(
			todayHours, yesterdayHours,
		),
	}, nil
}

// PeriodStats is the response for the trailing-window statistics
// endpoint.
type PeriodStats struct {
	Days               int                    `json:"days"`
	TotalMinutes       float64                `json:"total_minutes"`
	TotalHours         float64                `json:"total_hours"`
	AverageHoursPerDay float64                `json:"average_hours_per_day"`
	SubjectTimes       map[string]SubjectTime `json:"subject_times"`
	DailyStats         map[string]float64     `json:"daily_stats"`
}

// windowSince returns the inclusive since-date for a trailing window
// of the given length, anchored to the current instant rather than
// the study-date boundary.
func (a *Analytics) windowSince(days int) string {
	return a.now().In(a.loc).
		AddDate(0, 0, -days).
		Format(studyday.DateFormat)
}

// PeriodStats aggregates the trailing window of the given length.
// Subjects with no sessions in range are omitted.
func (a *Analytics) PeriodStats(
	ctx context.Context, days int,
) (PeriodStats, error) {
	f := db.DateFilter{Since: a.windowSince(days)}

	total, err := a.store.SumDuration(ctx, f)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("summing period: %w", err)
	}
	bySubject, err := a.store.SumDurationBySubject(ctx, f)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("summing period by subject: %w", err)
	}
	byDate, err := a.store.SumDurationByDate(ctx, f)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("summing period by date: %w", err)
	}

	subjectTimes := make(map[string]SubjectTime, len(bySubject))
	for subject, secs := range bySubject {
		subjectTimes[subject] = SubjectTime{
			Minutes: round2(float64(secs) / 60),
			Hours:   round2(float64(secs) / 3600),
		}
	}

	dailyStats := make(map[string]float64, len(byDate))
	for date, secs := range byDate {
		dailyStats[date] = round2(float64(secs) / 3600)
	}

	avg := 0.0
	if days > 0 {
		avg = round2(float64(total) / 3600 / float64(days))
	}

	return PeriodStats{
		Days:               days,
		TotalMinutes:       round2(float64(total) / 60),
		TotalHours:         round2(float64(total) / 3600),
		AverageHoursPerDay: avg,
		SubjectTimes:       subjectTimes,
		DailyStats:         dailyStats,
	}, nil
}

// ComparisonSubject is one subject's share of a comparison window.
// Unlike the single-period variant, absent subjects appear with
// explicit zeros.
type ComparisonSubject struct {
	Seconds int64   `json:"seconds"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// ComparisonWindow is one trailing window in the subject comparison.
type ComparisonWindow struct {
	TotalHours    float64                      `json:"total_hours"`
	AveragePerDay float64                      `json:"average_per_day"`
	Subjects      map[string]ComparisonSubject `json:"subjects"`
}

// SubjectComparison aggregates each configured trailing window,
// materializing the full subject enumeration per window. Keys are of
// the form "7days".
func (a *Analytics) SubjectComparison(
	ctx context.Context,
) (map[string]ComparisonWindow, error) {
	out := make(map[string]ComparisonWindow, len(a.windows))
	for _, days := range a.windows {
		f := db.DateFilter{Since: a.windowSince(days)}

		bySubject, err := a.store.SumDurationBySubject(ctx, f)
		if err != nil {
			return nil, fmt.Errorf(
				"summing %d-day window: %w", days, err,
			)
		}

		subjects := make(map[string]ComparisonSubject, len(a.subjects))
		for _, subject := range a.subjects {
			subjects[subject] = ComparisonSubject{}
		}

		var total int64
		for subject, secs := range bySubject {
			// Durations recorded under subjects no longer in the
			// configured list still count toward the total.
			if _, ok := subjects[subject]; ok {
				subjects[subject] = ComparisonSubject{
					Seconds: secs,
					Minutes: round2(float64(secs) / 60),
					Hours:   round2(float64(secs) / 3600),
				}
			}
			total += secs
		}

		avg := 0.0
		if days > 0 {
			avg = round2(float64(total) / 3600 / float64(days))
		}

		out[fmt.Sprintf("%ddays", days)] = ComparisonWindow{
			TotalHours:    round2(float64(total) / 3600),
			AveragePerDay: avg,
			Subjects:      subjects,
		}
	}
	return out, nil
}
