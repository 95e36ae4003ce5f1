package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecentNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, key := range []string{"a/1.png", "a/2.png", "b/3.png"} {
		require.NoError(t, s.Append(Record{
			Time:    base.Add(time.Duration(i) * time.Minute),
			Action:  ActionUpload,
			Key:     key,
			Outcome: OutcomeSuccess,
		}))
	}

	recs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b/3.png", recs[0].Key)
	assert.Equal(t, "a/2.png", recs[1].Key)
	assert.NotEmpty(t, recs[0].ID)
}

func TestAppendSameInstantKeepsBoth(t *testing.T) {
	s := openTestStore(t)
	at := time.Now()

	require.NoError(t, s.Append(Record{Time: at, Action: ActionDelete, Key: "x/1.png"}))
	require.NoError(t, s.Append(Record{Time: at, Action: ActionDelete, Key: "x/2.png"}))

	recs, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestCleanupRemovesOldRecords(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Append(Record{Time: now.Add(-48 * time.Hour), Action: ActionUpload, Key: "old"}))
	require.NoError(t, s.Append(Record{Time: now.Add(-time.Hour), Action: ActionUpload, Key: "new"}))

	n, err := s.Cleanup(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].Key)
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Append(Record{Action: ActionUpload}))
	_, err := s.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.CheckHealth(), ErrClosed)
}

func TestCheckHealth(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.CheckHealth())
}
