// Package auth guards the mutating and listing endpoints with the shared
// secret configured at start-up.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"yochan/failures"
	"yochan/logger"
)

const (
	msgUnauthenticated = "Unauthorized. Please provide your api `key` as a query parameter e.g. `?key=[]`."
	msgForbidden       = "Forbidden. Invalid API key."
	msgBadToken        = "Forbidden. Invalid or expired token."
)

// Gate validates presented credentials against the configured secret.
type Gate struct {
	secret     []byte
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	now        func() time.Time
}

// NewGate returns a Gate for secret. Bearer tokens are signed with a key
// derived from the secret and live for tokenTTL.
func NewGate(secret string, tokenTTL time.Duration) *Gate {
	sum := sha256.Sum256([]byte("yochan-token:" + secret))
	return &Gate{
		secret:     []byte(secret),
		signingKey: sum[:],
		issuer:     "yochan",
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// Authenticate checks a key presented by the caller. An empty key is
// treated as absent.
func (g *Gate) Authenticate(key string) error {
	if key == "" {
		return failures.Unauthenticated(msgUnauthenticated)
	}
	if subtle.ConstantTimeCompare([]byte(key), g.secret) != 1 {
		return failures.Forbidden(msgForbidden)
	}
	return nil
}

// AuthenticateRequest accepts either the `key` query parameter or an
// `Authorization: Bearer <token>` header.
func (g *Gate) AuthenticateRequest(r *http.Request) error {
	if key := r.URL.Query().Get("key"); key != "" {
		return g.Authenticate(key)
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return failures.Unauthenticated(msgUnauthenticated)
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return failures.Forbidden(msgBadToken)
	}
	if _, err := g.VerifyToken(token); err != nil {
		logger.Debugf("Rejected bearer token: %v", err)
		return failures.Forbidden(msgBadToken)
	}
	return nil
}

// Middleware rejects unauthenticated requests before any handler runs, so
// no parameter or body validation happens for them.
func (g *Gate) Middleware(onError func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.AuthenticateRequest(r); err != nil {
				logger.Warnf("Auth rejected %s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
				onError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
