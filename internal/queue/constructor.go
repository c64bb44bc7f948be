package queue

import (
	"context"
	"errors"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
)

const (
	TaskTypePublishPost = "publish:post"
	QueueName           = "default"
)

var ErrClosed = errors.New("scheduler is closed")

// Publisher is called when a post's publish time arrives.
type Publisher interface {
	Publish(ctx context.Context, post *models.ScheduledPost) error
}

// Scheduler keeps at most one pending publish per post id. Scheduling an id
// that is already armed replaces the previous timer.
type Scheduler interface {
	Schedule(ctx context.Context, post *models.ScheduledPost) error
	Cancel(ctx context.Context, id string) error
	Armed(id string) bool
	Close() error
}

type PublishPostPayload struct {
	Post *models.ScheduledPost `json:"post"`
}

// DelayUntil returns the wait before at, never negative.
func DelayUntil(at, now time.Time) time.Duration {
	d := at.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
