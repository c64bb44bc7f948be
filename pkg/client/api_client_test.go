package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/transfer"
)

func TestParseBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                        defaultBaseURL,
		"localhost:3001":          "http://localhost:3001",
		"https://api.example/x?y": "https://api.example",
	}
	for in, want := range cases {
		u, err := parseBaseURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, u.String(), in)
	}
}

func TestAPIClientSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/schedule", r.URL.Path)
		assert.Equal(t, "s3cret", r.Header.Get(secretHeader))

		var req transfer.ScheduleRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "linkedin", req.Platform)

		_ = json.NewEncoder(w).Encode(transfer.ScheduleResponse{
			OK: true,
			Item: &models.ScheduledPost{
				ID:          "post_1_abc",
				Platform:    req.Platform,
				Content:     req.Content,
				PublishTime: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
				Status:      models.PostStatusPending,
			},
			Message: "Post scheduled and added to Google Sheets",
		})
	}))
	defer srv.Close()

	c, err := NewAPIClient(srv.URL, "s3cret")
	require.NoError(t, err)

	post, err := c.Schedule(context.Background(), &transfer.ScheduleRequest{
		Platform:    "linkedin",
		Content:     "hello",
		PublishTime: "2030-01-01T09:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "post_1_abc", post.ID)
	assert.Equal(t, models.PostStatusPending, post.Status)
}

func TestAPIClientErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Forbidden - invalid secret"}`))
	}))
	defer srv.Close()

	c, err := NewAPIClient(srv.URL, "wrong")
	require.NoError(t, err)

	_, err = c.Schedule(context.Background(), &transfer.ScheduleRequest{Platform: "linkedin", PublishTime: "2030-01-01T09:00:00Z"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Forbidden - invalid secret", apiErr.Message)
}

func TestAPIClientListDeleteStatus(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"post_1_a","platform":"pinterest","status":"pending"}]`))
		case http.MethodPut:
			var up transfer.StatusUpdate
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&up))
			assert.Equal(t, "published", up.Status)
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	c, err := NewAPIClient(srv.URL, "")
	require.NoError(t, err)
	ctx := context.Background()

	posts, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "pinterest", posts[0].Platform)

	require.NoError(t, c.UpdateStatus(ctx, "post_1_a", &transfer.StatusUpdate{Status: "published"}))
	require.NoError(t, c.Delete(ctx, "post_1_a"))

	assert.Equal(t, []string{
		"GET /api/schedule",
		"PUT /api/schedule/post_1_a/status",
		"DELETE /api/schedule/post_1_a",
	}, calls)
}

func TestAPIClientEscapesIDOnce(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewAPIClient(srv.URL, "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, "post_1%a"))
	require.NoError(t, c.Delete(ctx, "post a/b"))
	require.NoError(t, c.UpdateStatus(ctx, "post_1%a", &transfer.StatusUpdate{Status: "failed"}))

	assert.Equal(t, []string{
		"/api/schedule/post_1%25a",
		"/api/schedule/post%20a%2Fb",
		"/api/schedule/post_1%25a/status",
	}, got)
}
