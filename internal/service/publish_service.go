package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/repository"
)

// PublishService forwards due posts to the automation webhook.
type PublishService interface {
	Publish(ctx context.Context, post *models.ScheduledPost) error
}

type publishService struct {
	webhookURL string
	client     *http.Client
	backup     repository.BackupRepository
	history    repository.PostingHistoryRepository
	now        func() time.Time
}

// NewPublishService builds the fire handler. history may be nil.
func NewPublishService(webhookURL string, timeout time.Duration, backup repository.BackupRepository, history repository.PostingHistoryRepository) PublishService {
	return &publishService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		backup:     backup,
		history:    history,
		now:        time.Now,
	}
}

// Publish posts the item as JSON. Only a 2xx answer marks the backup entry
// published; on failure the status is left as it was.
func (s *publishService) Publish(ctx context.Context, post *models.ScheduledPost) error {
	statusCode, err := s.forward(ctx, post)
	s.record(ctx, post, statusCode, err)
	if err != nil {
		slog.Error("failed to forward post to webhook", "post_id", post.ID, "error", err)
		return err
	}

	now := s.now().UTC()
	found, err := s.backup.Update(post.ID, func(p *models.ScheduledPost) {
		p.Status = models.PostStatusPublished
		p.UpdatedAt = now
	})
	if err != nil {
		slog.Error("unable to mark post published", "post_id", post.ID, "error", err)
		return err
	}
	if !found {
		slog.Info("published post has no backup entry", "post_id", post.ID)
	}

	slog.Info("post forwarded to webhook", "post_id", post.ID, "status_code", statusCode)
	return nil
}

func (s *publishService) forward(ctx context.Context, post *models.ScheduledPost) (int, error) {
	if s.webhookURL == "" {
		return 0, ErrWebhookNotConfigured
	}

	body, err := json.Marshal(post)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("webhook responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return resp.StatusCode, nil
}

func (s *publishService) record(ctx context.Context, post *models.ScheduledPost, statusCode int, err error) {
	if s.history == nil {
		return
	}
	ph := models.PostingHistory{
		PostID:     post.ID,
		Platform:   post.Platform,
		StatusCode: statusCode,
	}
	if err != nil {
		ph.ErrorMessage = err.Error()
	}
	if _, err := s.history.Create(ctx, &ph); err != nil {
		slog.Error("unable to save posting history", "post_id", post.ID, "error", err)
	}
}
