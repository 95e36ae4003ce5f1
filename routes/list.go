package routes

import (
	"net/http"
	"strconv"

	"yochan/failures"
	"yochan/logger"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

// ListHandler returns every namespace and the URLs stored in it.
func (s *Server) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.media.List(r.Context(), s.baseURL(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

// JournalHandler returns the most recent activity records, newest first.
func (s *Server) JournalHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxJournalLimit {
			respondError(w, failures.Validationf(
				"Invalid `limit` query parameter. Expected an integer between 1 and %d.", maxJournalLimit))
			return
		}
		limit = n
	}

	records, err := s.journal.Recent(limit)
	if err != nil {
		logger.Errorf("Failed to list journal records: %v", err)
		respondError(w, err)
		return
	}
	respondOK(w, records)
}
