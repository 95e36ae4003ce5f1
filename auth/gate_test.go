package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yochan/failures"
)

func TestAuthenticate(t *testing.T) {
	g := NewGate("s3cret", time.Hour)

	err := g.Authenticate("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, failures.ErrUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, failures.StatusCode(err))

	err = g.Authenticate("wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, failures.ErrForbidden))
	assert.Equal(t, "Forbidden. Invalid API key.", err.Error())

	assert.NoError(t, g.Authenticate("s3cret"))
}

func TestTokenRoundTrip(t *testing.T) {
	g := NewGate("s3cret", time.Hour)

	token, expires, err := g.IssueToken("ci")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := g.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.Equal(t, "yochan", claims.Issuer)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	token, _, err := NewGate("other", time.Hour).IssueToken("ci")
	require.NoError(t, err)

	_, err = NewGate("s3cret", time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestExpiredTokenRejected(t *testing.T) {
	g := NewGate("s3cret", time.Minute)
	g.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := g.IssueToken("ci")
	require.NoError(t, err)

	g.now = time.Now
	_, err = g.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestMiddleware(t *testing.T) {
	g := NewGate("s3cret", time.Hour)
	token, _, err := g.IssueToken("ci")
	require.NoError(t, err)

	var reached bool
	handler := g.Middleware(func(w http.ResponseWriter, err error) {
		w.WriteHeader(failures.StatusCode(err))
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	tests := []struct {
		name   string
		target string
		header string
		want   int
		reach  bool
	}{
		{"no credential", "/", "", http.StatusUnauthorized, false},
		{"wrong key", "/?key=nope", "", http.StatusForbidden, false},
		{"right key", "/?key=s3cret", "", http.StatusOK, true},
		{"bearer token", "/", "Bearer " + token, http.StatusOK, true},
		{"garbage token", "/", "Bearer abc.def.ghi", http.StatusForbidden, false},
		{"not bearer", "/", "Basic Zm9vOmJhcg==", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.reach, reached)
		})
	}
}
