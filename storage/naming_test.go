package storage

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yochan/failures"
)

func TestPlace(t *testing.T) {
	assert.Equal(t, "avatars/1234.jpeg", Place("avatars", "1234", "jpeg"))
	assert.Equal(t, "_misc/abc.png", Place("_misc", "abc", "png"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/uploads/avatars/a.png", PublicURL("http://localhost:3000", "avatars/a.png"))
	assert.Equal(t, "https://img.example.com/uploads/x/y.webp", PublicURL("https://img.example.com/", "x/y.webp"))
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"round trip", PublicURL("http://h:3000", "avatars/a.png"), "avatars/a.png", nil},
		{"other host", "https://cdn.example.com/uploads/p/f.jpeg", "p/f.jpeg", nil},
		{"traversal stays inside root", "http://h/uploads/../../etc/passwd", "etc/passwd", nil},
		{"encoded traversal", "http://h/uploads/%2e%2e/%2e%2e/x.png", "x.png", nil},
		{"relative", "/uploads/p/f.png", "", failures.ErrValidation},
		{"garbage", "::::", "", failures.ErrValidation},
		{"root", "http://h/uploads/", "", failures.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyFromURL(tt.raw)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupKeys(t *testing.T) {
	got := groupKeys([]string{"b/2.png", "a/1.png", "root.png", "b/1.png", "a/nested/x.png"})
	assert.Equal(t, []Namespace{
		{Purpose: "a", Files: []string{"1.png"}},
		{Purpose: "b", Files: []string{"1.png", "2.png"}},
	}, got)
}
