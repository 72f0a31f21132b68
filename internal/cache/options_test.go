package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOptions(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{
		"path":   "/tmp/c",
		"ttl":    120,
		"prefix": "app:",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c", opts.Path)
	assert.Equal(t, 2*time.Minute, opts.TTL)
	assert.Equal(t, "app:", opts.Prefix)
}

func TestDecodeOptionsRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"prefix": "p", "ttl": 1, "logger": "x"})
	assert.Error(t, err)
}

func TestDecodeOptionsRequiresPrefix(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"path": "c"})
	assert.ErrorIs(t, err, ErrPrefixRequired)
}

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in   any
		want time.Duration
	}{
		{3600, time.Hour},
		{int64(30), 30 * time.Second},
		{1.5, 1500 * time.Millisecond},
		{-1, Forever},
		{"-1", Forever},
		{"90", 90 * time.Second},
		{"90m", 90 * time.Minute},
		{"1d", 24 * time.Hour},
		{"1w2d", 9 * 24 * time.Hour},
		{time.Minute, time.Minute},
		{"", 0},
	}
	for _, tc := range cases {
		got, err := ParseTTL(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}

	_, err := ParseTTL("boom")
	assert.Error(t, err)
	_, err = ParseTTL([]int{1})
	assert.Error(t, err)
}
