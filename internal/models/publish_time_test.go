package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledPostDecodesPublishTimeForms(t *testing.T) {
	want := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2030-01-01T10:00", "2030-01-01T10:00:00", "2030-01-01T12:00:00+02:00"} {
		var p ScheduledPost
		require.NoError(t, json.Unmarshal([]byte(`{"id":"post_1_a","publishTime":"`+raw+`"}`), &p), raw)
		assert.Equal(t, want, p.PublishTime, raw)
		assert.Equal(t, "post_1_a", p.ID)
	}
}

func TestScheduledPostMissingPublishTime(t *testing.T) {
	var p ScheduledPost
	require.NoError(t, json.Unmarshal([]byte(`{"id":"post_1_a","publishTime":null}`), &p))
	assert.True(t, p.PublishTime.IsZero())
}

func TestScheduledPostRejectsBadPublishTime(t *testing.T) {
	var p ScheduledPost
	assert.Error(t, json.Unmarshal([]byte(`{"id":"post_1_a","publishTime":"tomorrow"}`), &p))
}

func TestScheduledPostJSONRoundTripKeepsRFC3339(t *testing.T) {
	in := ScheduledPost{ID: "post_1_a", PublishTime: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"publishTime":"2030-01-01T10:00:00Z"`)

	var out ScheduledPost
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.PublishTime, out.PublishTime)
}
