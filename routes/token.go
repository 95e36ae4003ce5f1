package routes

import (
	"net/http"

	"yochan/models"
)

// TokenHandler issues a bearer token that can replace the `key` parameter
// until it expires.
func (s *Server) TokenHandler(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		subject = "api"
	}

	token, expiresAt, err := s.gate.IssueToken(subject)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, models.TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
