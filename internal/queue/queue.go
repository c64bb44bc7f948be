package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postsheet/internal/models"
)

type asynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	now       func() time.Time
}

// NewAsynqScheduler keeps publish timers as delayed tasks in Redis, keyed by
// post id, so they survive a restart.
func NewAsynqScheduler(redisConn asynq.RedisConnOpt) Scheduler {
	return &asynqScheduler{
		client:    asynq.NewClient(redisConn),
		inspector: asynq.NewInspector(redisConn),
		now:       time.Now,
	}
}

func (s *asynqScheduler) Schedule(ctx context.Context, post *models.ScheduledPost) error {
	taskPayload, err := json.Marshal(PublishPostPayload{Post: post})
	if err != nil {
		return err
	}

	delay := DelayUntil(post.PublishTime, s.now())
	task := asynq.NewTask(TaskTypePublishPost, taskPayload,
		asynq.TaskID(post.ID),
		asynq.Queue(QueueName),
		asynq.MaxRetry(0),
	)

	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		if err := s.inspector.DeleteTask(QueueName, post.ID); err != nil {
			return err
		}
		_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	}
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %s in %s", post.ID, delay.Round(time.Second))
	return nil
}

func (s *asynqScheduler) Cancel(ctx context.Context, id string) error {
	err := s.inspector.DeleteTask(QueueName, id)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func (s *asynqScheduler) Armed(id string) bool {
	info, err := s.inspector.GetTaskInfo(QueueName, id)
	if err != nil {
		return false
	}
	switch info.State {
	case asynq.TaskStateScheduled, asynq.TaskStatePending, asynq.TaskStateActive, asynq.TaskStateRetry:
		return true
	}
	return false
}

func (s *asynqScheduler) Close() error {
	return errors.Join(s.client.Close(), s.inspector.Close())
}
