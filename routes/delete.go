package routes

import (
	"fmt"
	"net/http"

	"yochan/failures"
	"yochan/transform"
)

// DeleteHandler removes the artifact whose public URL is given as urlPath.
func (s *Server) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	urlPath := r.URL.Query().Get("urlPath")
	if urlPath == "" {
		respondError(w, failures.Validation("Invalid URL."))
		return
	}

	if err := s.media.DeleteByURL(r.Context(), urlPath); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, "File deleted successfully.")
}

// DeleteNamespaceHandler removes a whole purpose directory.
func (s *Server) DeleteNamespaceHandler(w http.ResponseWriter, r *http.Request) {
	purpose, err := transform.CheckPurpose(r.URL.Query().Get("purpose"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.media.DeleteNamespace(r.Context(), purpose); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("Directory %s deleted successfully.", purpose))
}
