package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPostID(t *testing.T) {
	assert.NoError(t, checkPostID("post_1717000000000_abc123def"))
	assert.NoError(t, checkPostID("post_1717000000000"))
	assert.Error(t, checkPostID("1717000000000"))
	assert.Error(t, checkPostID("post_"))
}

func TestPlatformNote(t *testing.T) {
	assert.Empty(t, platformNote("LinkedIn"))
	assert.Empty(t, platformNote("pinterest"))
	assert.Contains(t, platformNote("blog"), "Posts ledger")
}

func TestParseAt(t *testing.T) {
	got, err := parseAt("2030-01-01T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC), got)

	got, err = parseAt("2030-01-01T09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 0, got.Minute())

	_, err = parseAt("")
	assert.Error(t, err)
}
