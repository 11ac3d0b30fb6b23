package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func insertTestSession(
	t *testing.T, d *DB, date, subject string, duration int64,
) {
	t.Helper()
	_, err := d.InsertSession(context.Background(), Session{
		StudyDate: date,
		Subject:   subject,
		StartTime: date + " 10:00:00",
		EndTime:   date + " 11:00:00",
		Duration:  duration,
	})
	require.NoError(t, err)
}

func TestInsertSessionAssignsIDs(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id1, err := d.InsertSession(ctx, Session{
		StudyDate: "2024-01-15", Subject: "reading",
		StartTime: "2024-01-15 10:00:00",
		EndTime:   "2024-01-15 10:30:00",
		Duration:  1800,
	})
	require.NoError(t, err)
	id2, err := d.InsertSession(ctx, Session{
		StudyDate: "2024-01-15", Subject: "reading",
		StartTime: "2024-01-15 11:00:00",
		EndTime:   "2024-01-15 11:30:00",
		Duration:  1800,
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestSumDuration(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	insertTestSession(t, d, "2024-01-14", "tax-law", 600)
	insertTestSession(t, d, "2024-01-15", "tax-law", 1200)
	insertTestSession(t, d, "2024-01-15", "reading", 300)

	tests := []struct {
		name   string
		filter DateFilter
		want   int64
	}{
		{"all rows", DateFilter{}, 2100},
		{"single date", DateFilter{Date: "2024-01-15"}, 1500},
		{"since inclusive", DateFilter{Since: "2024-01-14"}, 2100},
		{"since excludes earlier", DateFilter{Since: "2024-01-15"}, 1500},
		{"no matches", DateFilter{Date: "2024-02-01"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.SumDuration(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSumDurationBySubject(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	insertTestSession(t, d, "2024-01-15", "tax-law", 1200)
	insertTestSession(t, d, "2024-01-15", "tax-law", 600)
	insertTestSession(t, d, "2024-01-15", "reading", 300)
	insertTestSession(t, d, "2024-01-10", "craft", 900)

	got, err := d.SumDurationBySubject(ctx, DateFilter{Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"tax-law": 1800,
		"reading": 300,
	}, got)

	all, err := d.SumDurationBySubject(ctx, DateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(900), all["craft"])
}

func TestSumDurationByDate(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	insertTestSession(t, d, "2024-01-14", "tax-law", 600)
	insertTestSession(t, d, "2024-01-15", "tax-law", 1200)
	insertTestSession(t, d, "2024-01-15", "reading", 300)

	got, err := d.SumDurationByDate(ctx, DateFilter{Since: "2024-01-14"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"2024-01-14": 600,
		"2024-01-15": 1500,
	}, got)
}

// The sum of per-subject buckets, the sum of per-day buckets, and the
// plain total must agree for any filter.
func TestAggregateSumsAgree(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	insertTestSession(t, d, "2024-01-13", "craft", 900)
	insertTestSession(t, d, "2024-01-14", "tax-law", 600)
	insertTestSession(t, d, "2024-01-15", "tax-law", 1200)
	insertTestSession(t, d, "2024-01-15", "reading", 300)

	f := DateFilter{Since: "2024-01-14"}

	total, err := d.SumDuration(ctx, f)
	require.NoError(t, err)

	bySubject, err := d.SumDurationBySubject(ctx, f)
	require.NoError(t, err)
	var subjectSum int64
	for _, v := range bySubject {
		subjectSum += v
	}

	byDate, err := d.SumDurationByDate(ctx, f)
	require.NoError(t, err)
	var dateSum int64
	for _, v := range byDate {
		dateSum += v
	}

	assert.Equal(t, total, subjectSum)
	assert.Equal(t, total, dateSum)
}

func TestDistinctDates(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	dates, err := d.DistinctDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	insertTestSession(t, d, "2024-01-15", "tax-law", 600)
	insertTestSession(t, d, "2024-01-13", "reading", 300)
	insertTestSession(t, d, "2024-01-15", "craft", 900)

	dates, err = d.DistinctDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-13", "2024-01-15"}, dates)
}
