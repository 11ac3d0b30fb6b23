// Package studyday maps wall-clock instants to logical study dates.
//
// A study date is the calendar day a session is attributed to. Sessions
// that end after midnight but before the cutoff hour count toward the
// previous day, so a stretch of late-night studying is not split across
// two dates. All calendar arithmetic happens in an explicit location;
// callers never rely on the host's local zone.
package studyday

import "time"

// DateFormat is the canonical study-date representation.
const DateFormat = "2006-01-02"

// StudyDate returns the study date of t under the given cutoff hour.
// If the local hour of t is strictly less than cutoffHour, t belongs
// to the previous calendar day.
func StudyDate(t time.Time, cutoffHour int, loc *time.Location) string {
	local := t.In(loc)
	if local.Hour() < cutoffHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(DateFormat)
}

// Yesterday returns the study date one day before the study date of t,
// applying the same cutoff rule shifted back one full day.
func Yesterday(t time.Time, cutoffHour int, loc *time.Location) string {
	return StudyDate(t.In(loc).AddDate(0, 0, -1), cutoffHour, loc)
}
