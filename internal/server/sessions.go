package server

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/skeleton-pawn/stweb/internal/db"
	"github.com/skeleton-pawn/stweb/internal/studyday"
)

// minSessionSeconds is the write-boundary floor: shorter stopwatch
// intervals are rejected and never stored.
const minSessionSeconds = 60

// storedTimeFormat is how session start/end instants are persisted,
// as local wall-clock strings in the configured zone.
const storedTimeFormat = "2006-01-02 15:04:05"

func (s *Server) handleSubjects(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.analytics().Subjects())
}

// recordSessionRequest is a completed stopwatch interval. StartTime
// and EndTime are epoch seconds; Duration is seconds. Duration is
// taken as reported by the stopwatch, not recomputed from the
// endpoints.
type recordSessionRequest struct {
	Subject   string `json:"subject"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Duration  int64  `json:"duration"`
}

type recordSessionResponse struct {
	Message         string  `json:"message"`
	DurationMinutes float64 `json:"duration_minutes"`
}

func (s *Server) handleRecordSession(
	w http.ResponseWriter, r *http.Request,
) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a := s.analytics()
	switch {
	case req.Subject == "":
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	case !slices.Contains(a.Subjects(), req.Subject):
		writeError(w, http.StatusBadRequest,
			"unknown subject: "+req.Subject)
		return
	case req.StartTime <= 0 || req.EndTime <= 0:
		writeError(w, http.StatusBadRequest,
			"start_time and end_time are required")
		return
	case req.EndTime < req.StartTime:
		writeError(w, http.StatusBadRequest,
			"end_time precedes start_time")
		return
	case req.Duration < minSessionSeconds:
		writeError(w, http.StatusBadRequest,
			"Session too short, not recorded")
		return
	}

	loc := a.Location()
	end := time.Unix(req.EndTime, 0).In(loc)
	sess := db.Session{
		// The study date follows the session's end, so a run that
		// crosses midnight lands on the day it finished under.
		StudyDate: studyday.StudyDate(end, a.CutoffHour(), loc),
		Subject:   req.Subject,
		StartTime: time.Unix(req.StartTime, 0).In(loc).Format(storedTimeFormat),
		EndTime:   end.Format(storedTimeFormat),
		Duration:  req.Duration,
	}

	if _, err := s.db.InsertSession(r.Context(), sess); err != nil {
		if handleContextError(w, err) {
			return
		}
		log.Printf("record-session error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"Database record failed")
		return
	}

	writeJSON(w, http.StatusOK, recordSessionResponse{
		Message:         "Session recorded successfully",
		DurationMinutes: math.Round(float64(req.Duration)/60*100) / 100,
	})
}
