package models

import "time"

// ListEntry describes one namespace in the /list response.
type ListEntry struct {
	Purpose string   `json:"purpose"`
	Length  int      `json:"length"`
	Files   []string `json:"files"`
}

// BatchItem is the per-file status of a multi-file upload.
type BatchItem struct {
	File    string     `json:"file"`
	Success bool       `json:"success"`
	Result  string     `json:"result,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}
