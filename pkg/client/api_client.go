package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/transfer"
)

const (
	defaultBaseURL   = "http://127.0.0.1:3001"
	defaultUserAgent = "postsheet-client/0.1"
	requestTimeout   = 20 * time.Second
	secretHeader     = "x-schedule-secret"
)

// APIError is a non-2xx answer from the schedule API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// APIClient talks to the schedule API.
type APIClient struct {
	baseURL   *url.URL
	http      *http.Client
	secret    string
	userAgent string
}

func NewAPIClient(baseURL, secret string) (*APIClient, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		secret:    secret,
		userAgent: defaultUserAgent,
	}, nil
}

func (c *APIClient) Schedule(ctx context.Context, req *transfer.ScheduleRequest) (*models.ScheduledPost, error) {
	var payload transfer.ScheduleResponse
	if err := c.do(ctx, http.MethodPost, "/api/schedule", req, &payload); err != nil {
		return nil, err
	}
	if payload.Item == nil {
		return nil, fmt.Errorf("schedule response without item")
	}
	return payload.Item, nil
}

func (c *APIClient) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	var posts []*models.ScheduledPost
	if err := c.do(ctx, http.MethodGet, "/api/schedule", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *APIClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/schedule/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) UpdateStatus(ctx context.Context, id string, update *transfer.StatusUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/schedule/"+url.PathEscape(id)+"/status", update, nil)
}

func (c *APIClient) History(ctx context.Context, id string) ([]*models.PostingHistory, error) {
	var phs []*models.PostingHistory
	if err := c.do(ctx, http.MethodGet, "/api/schedule/"+url.PathEscape(id)+"/history", nil, &phs); err != nil {
		return nil, err
	}
	return phs, nil
}

// do sends a request to path, which must already be escaped.
func (c *APIClient) do(ctx context.Context, method, path string, body, dest any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse request path: %w", err)
	}
	reqURL := c.baseURL.ResolveReference(ref)

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set(secretHeader, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = strings.TrimSpace(msg.Error + " " + msg.Details)
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
