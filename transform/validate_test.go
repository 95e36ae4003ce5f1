package transform

import (
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yochan/failures"
)

func TestValidateAcceptsRanges(t *testing.T) {
	plan, err := Validate(url.Values{
		"thumbnail": {"10000"},
		"asJpeg":    {"1"},
		"asWebp":    {"100"},
		"unknown":   {"whatever"},
	})
	require.NoError(t, err)

	dim, ok := plan.ThumbnailMaxDimension()
	assert.True(t, ok)
	assert.Equal(t, 10000, dim)
	q, ok := plan.JPEGQuality()
	assert.True(t, ok)
	assert.Equal(t, 1, q)
	q, ok = plan.WebPQuality()
	assert.True(t, ok)
	assert.Equal(t, 100, q)
	assert.Equal(t, "thumbnail(10000) -> asJpeg(1) -> asWebp(100)", plan.String())
}

func TestValidateEmpty(t *testing.T) {
	plan, err := Validate(url.Values{})
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	_, ok := plan.ThumbnailMaxDimension()
	assert.False(t, ok)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"thumbnail", "0"},
		{"thumbnail", "10001"},
		{"thumbnail", "abc"},
		{"thumbnail", ""},
		{"thumbnail", "1.5"},
		{"asJpeg", "0"},
		{"asJpeg", "101"},
		{"asWebp", "-1"},
		{"asWebp", "high"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := Validate(url.Values{tt.key: {tt.value}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, failures.ErrValidation))
			assert.Contains(t, err.Error(), "`"+tt.key+"`")
		})
	}
}

func TestValidateFailsFastInOrder(t *testing.T) {
	_, err := Validate(url.Values{"asWebp": {"0"}, "asJpeg": {"0"}, "thumbnail": {"0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`thumbnail`")

	_, err = Validate(url.Values{"asWebp": {"0"}, "asJpeg": {"0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`asJpeg`")
}

func TestValidatePurpose(t *testing.T) {
	p, err := ValidatePurpose(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPurpose, p)

	p, err = ValidatePurpose(url.Values{"purpose": {"user-avatars_2"}})
	require.NoError(t, err)
	assert.Equal(t, "user-avatars_2", p)

	for _, bad := range []string{"", "../../etc", "a/b", "a b", "é", "."} {
		_, err := ValidatePurpose(url.Values{"purpose": {bad}})
		assert.Error(t, err, "purpose %q", bad)
	}
}

func TestPlanStepOrderIsFixed(t *testing.T) {
	steps := NewPlan(10, 50, 60).Steps()
	require.Len(t, steps, 3)
	assert.IsType(t, Resize{}, steps[0])
	assert.IsType(t, EncodeJPEG{}, steps[1])
	assert.IsType(t, EncodeWebP{}, steps[2])
}
