package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

type Worker struct {
	pub Publisher
}

func NewWorker(pub Publisher) *Worker {
	return &Worker{pub: pub}
}

// HandlePublishPostTask forwards the post carried by the task. A failed
// forward is logged and not retried.
func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode publish payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Post == nil {
		return fmt.Errorf("publish payload without post: %w", asynq.SkipRetry)
	}

	if err := w.pub.Publish(ctx, payload.Post); err != nil {
		log.Printf("Error publishing PostID %s: %v", payload.Post.ID, err)
	}
	return nil
}

// NewServeMux routes publish tasks to the worker.
func NewServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePublishPost, w.HandlePublishPostTask)
	return mux
}
