package server

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleTodayStats(
	w http.ResponseWriter, r *http.Request,
) {
	result, err := s.analytics().TodayStats(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		log.Printf("today-stats error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"Failed to retrieve today stats")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatistics(
	w http.ResponseWriter, r *http.Request,
) {
	days, err := strconv.Atoi(r.PathValue("days"))
	if err != nil || days < 1 {
		writeError(w, http.StatusBadRequest,
			"days must be a positive integer")
		return
	}

	result, err := s.analytics().PeriodStats(r.Context(), days)
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		log.Printf("statistics error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"Failed to retrieve statistics")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubjectComparison(
	w http.ResponseWriter, r *http.Request,
) {
	result, err := s.analytics().SubjectComparison(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		log.Printf("subject-comparison error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"Failed to retrieve subject comparison")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStreakInfo(
	w http.ResponseWriter, r *http.Request,
) {
	result, err := s.analytics().StreakInfo(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		log.Printf("streak-info error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"Failed to retrieve streak info")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleHealth is a liveness probe. It never touches the store: the
// process being able to answer is the whole signal.
func (s *Server) handleHealth(
	w http.ResponseWriter, _ *http.Request,
) {
	now := time.Now().In(s.analytics().Location())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: now.Format(time.RFC3339),
	})
}
