package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Session represents a row in the study_sessions table. StudyDate is
// assigned at insert time from the session's end instant and is never
// recomputed; StartTime and EndTime are formatted local timestamps.
type Session struct {
	ID        int64  `json:"id"`
	StudyDate string `json:"study_date"`
	Subject   string `json:"subject"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  int64  `json:"duration"` // seconds
}

// DateFilter restricts duration queries by study date. Date matches a
// single study date exactly; Since matches study_date >= Since
// (inclusive). The zero value matches all rows.
type DateFilter struct {
	Date  string
	Since string
}

// where returns a WHERE clause (possibly empty) and its args.
func (f DateFilter) where() (string, []any) {
	var preds []string
	var args []any
	if f.Date != "" {
		preds = append(preds, "study_date = ?")
		args = append(args, f.Date)
	}
	if f.Since != "" {
		preds = append(preds, "study_date >= ?")
		args = append(args, f.Since)
	}
	if len(preds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

// InsertSession appends a completed session and returns its assigned
// ID. The insert is atomic: on error no row persists.
func (db *DB) InsertSession(ctx context.Context, s Session) (int64, error) {
	var id int64
	err := db.Update(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO study_sessions
				(study_date, subject, start_time, end_time, duration)
			 VALUES (?, ?, ?, ?, ?)`,
			s.StudyDate, s.Subject, s.StartTime, s.EndTime, s.Duration,
		)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading session id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SumDuration returns total recorded seconds matching the filter.
func (db *DB) SumDuration(
	ctx context.Context, f DateFilter,
) (int64, error) {
	where, args := f.where()
	query := `SELECT COALESCE(SUM(duration), 0)
		FROM study_sessions` + where

	var total int64
	err := db.reader.QueryRowContext(ctx, query, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing durations: %w", err)
	}
	return total, nil
}

// SumDurationBySubject returns recorded seconds grouped by subject
// for rows matching the filter. Subjects with no rows are absent.
func (db *DB) SumDurationBySubject(
	ctx context.Context, f DateFilter,
) (map[string]int64, error) {
	where, args := f.where()
	query := `SELECT subject, SUM(duration)
		FROM study_sessions` + where + `
		GROUP BY subject`

	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summing by subject: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var subject string
		var total int64
		if err := rows.Scan(&subject, &total); err != nil {
			return nil, fmt.Errorf("scanning subject sum: %w", err)
		}
		sums[subject] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subject sums: %w", err)
	}
	return sums, nil
}

// SumDurationByDate returns recorded seconds grouped by study date
// for rows matching the filter.
func (db *DB) SumDurationByDate(
	ctx context.Context, f DateFilter,
) (map[string]int64, error) {
	where, args := f.where()
	query := `SELECT study_date, SUM(duration)
		FROM study_sessions` + where + `
		GROUP BY study_date`

	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summing by date: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var date string
		var total int64
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("scanning date sum: %w", err)
		}
		sums[date] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating date sums: %w", err)
	}
	return sums, nil
}

// DistinctDates returns every study date with at least one session,
// in ascending order.
func (db *DB) DistinctDates(ctx context.Context) ([]string, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT DISTINCT study_date FROM study_sessions
		 ORDER BY study_date`)
	if err != nil {
		return nil, fmt.Errorf("querying distinct dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning distinct date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distinct dates: %w", err)
	}
	return dates, nil
}
