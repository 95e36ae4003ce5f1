package routes

import (
	"encoding/json"
	"net/http"

	"yochan/failures"
	"yochan/logger"
	"yochan/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// respondOK writes a 200 success envelope around result.
func respondOK(w http.ResponseWriter, result interface{}) {
	writeJSON(w, http.StatusOK, models.OK(result))
}

// respondError writes the failure envelope with the status for err's kind.
func respondError(w http.ResponseWriter, err error) {
	status := failures.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("Internal error: %+v", err)
	}
	writeJSON(w, status, models.Fail(failures.Message(err)))
}
