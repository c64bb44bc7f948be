package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
)

type timerEntry struct {
	post  *models.ScheduledPost
	timer *time.Timer
}

type timerQueue struct {
	pub Publisher
	now func() time.Time

	mu     sync.Mutex
	timers map[string]*timerEntry
	closed bool
	wg     sync.WaitGroup
}

// NewTimerQueue returns an in-process Scheduler. Armed timers do not survive a
// restart.
func NewTimerQueue(pub Publisher) Scheduler {
	return &timerQueue{
		pub:    pub,
		now:    time.Now,
		timers: make(map[string]*timerEntry),
	}
}

func (q *timerQueue) Schedule(ctx context.Context, post *models.ScheduledPost) error {
	p := *post
	delay := DelayUntil(p.PublishTime, q.now())

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if old, ok := q.timers[p.ID]; ok {
		old.timer.Stop()
	}

	e := &timerEntry{post: &p}
	q.timers[p.ID] = e
	e.timer = time.AfterFunc(delay, func() { q.fire(e) })

	slog.Info("publish timer armed", "post_id", p.ID, "delay", delay.Round(time.Second).String())
	return nil
}

func (q *timerQueue) Cancel(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.timers[id]; ok {
		e.timer.Stop()
		delete(q.timers, id)
		slog.Info("publish timer cancelled", "post_id", id)
	}
	return nil
}

// Armed is true from Schedule until the publish for id has returned.
func (q *timerQueue) Armed(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.timers[id]
	return ok
}

// Close stops every pending timer and waits for running publishes.
func (q *timerQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	for id, e := range q.timers {
		e.timer.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// fire keeps the entry registered until Publish returns, so Armed reports an
// in-flight publish.
func (q *timerQueue) fire(e *timerEntry) {
	q.mu.Lock()
	// a replaced or cancelled timer may still run once
	if q.closed || q.timers[e.post.ID] != e {
		q.mu.Unlock()
		return
	}
	q.wg.Add(1)
	q.mu.Unlock()

	defer q.wg.Done()

	if err := q.pub.Publish(context.Background(), e.post); err != nil {
		slog.Error("scheduled publish failed", "post_id", e.post.ID, "error", err)
	}

	q.mu.Lock()
	if q.timers[e.post.ID] == e {
		delete(q.timers, e.post.ID)
	}
	q.mu.Unlock()
}
