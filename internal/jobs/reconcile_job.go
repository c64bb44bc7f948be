package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postsheet/internal/service"
)

type ReconcileJob struct {
	s       service.ScheduleService
	rearm   bool
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

func NewReconcileJob(s service.ScheduleService, rearm bool, timeout time.Duration) *ReconcileJob {
	return &ReconcileJob{s: s, rearm: rearm, timeout: timeout}
}

// Run compares the local backup with the sheets. Overlapping runs are skipped.
func (j *ReconcileJob) Run() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		slog.Info("reconcile already running, skipping")
		return
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.s.Reconcile(ctx, j.rearm); err != nil {
		slog.Error("reconcile finished with errors", "error", err)
		return
	}
	slog.Info("reconcile finished")
}
