package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/queue"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookedSheets runs a hook once, before the first AddPost or after the
// DeletePost that ends a purge.
type hookedSheets struct {
	repository.SheetRepository
	mu          sync.Mutex
	beforeAdd   func()
	afterPurged func()
}

func (h *hookedSheets) take(hook *func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn := *hook
	*hook = nil
	return fn
}

func (h *hookedSheets) AddPost(ctx context.Context, post *models.ScheduledPost) (string, error) {
	if fn := h.take(&h.beforeAdd); fn != nil {
		fn()
	}
	return h.SheetRepository.AddPost(ctx, post)
}

func (h *hookedSheets) DeletePost(ctx context.Context, id string) error {
	err := h.SheetRepository.DeletePost(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if fn := h.take(&h.afterPurged); fn != nil {
			fn()
		}
	}
	return err
}

// signallingBackup reports every full read of the backup list.
type signallingBackup struct {
	repository.BackupRepository
	reads chan struct{}
}

func (b *signallingBackup) Read() []*models.ScheduledPost {
	posts := b.BackupRepository.Read()
	select {
	case b.reads <- struct{}{}:
	default:
	}
	return posts
}

type raceFixture struct {
	svc    ScheduleService
	mem    *repository.MemorySheets
	sheets *hookedSheets
	backup *signallingBackup
}

func newRaceFixture(t *testing.T, scheduler queue.Scheduler) *raceFixture {
	t.Helper()
	mem := repository.NewMemorySheets()
	inner, err := repository.NewBackupRepository(filepath.Join(t.TempDir(), "schedules.json"))
	require.NoError(t, err)

	f := &raceFixture{
		mem:    mem,
		sheets: &hookedSheets{SheetRepository: repository.NewSheetRepository(mem)},
		backup: &signallingBackup{BackupRepository: inner, reads: make(chan struct{}, 1)},
	}
	f.svc = NewScheduleService(f.sheets, f.backup, scheduler, NewMediaService(nil), nil, time.Second)
	return f
}

// startReconcile runs a sweep in the background and returns once the sweep
// has taken its snapshot of the backup.
func (f *raceFixture) startReconcile(t *testing.T, done chan<- error) {
	t.Helper()
	go func() { done <- f.svc.Reconcile(context.Background(), true) }()
	select {
	case <-f.backup.reads:
	case <-time.After(2 * time.Second):
		t.Error("reconcile did not read the backup")
	}
}

func TestReconcileDuringDeleteDoesNotResurrect(t *testing.T) {
	f := newRaceFixture(t, newFakeScheduler())
	ctx := context.Background()

	post, err := f.svc.Create(ctx, &transfer.ScheduleRequest{
		Platform:    "blog",
		Content:     "bye",
		PublishTime: "2030-01-01T10:00:00Z",
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	f.sheets.afterPurged = func() { f.startReconcile(t, done) }

	require.NoError(t, f.svc.Delete(ctx, post.ID))
	require.NoError(t, <-done)

	_, ok := f.backup.Get(post.ID)
	assert.False(t, ok)
	assert.Len(t, f.mem.Rows(repository.LegacySheet), 1)
}

func TestReconcileDuringCreateDoesNotDuplicate(t *testing.T) {
	f := newRaceFixture(t, newFakeScheduler())
	ctx := context.Background()

	done := make(chan error, 1)
	f.sheets.beforeAdd = func() { f.startReconcile(t, done) }

	_, err := f.svc.Create(ctx, &transfer.ScheduleRequest{
		Platform:    "linkedin",
		Content:     "hello",
		PublishTime: "2030-01-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Len(t, f.mem.Rows(repository.LegacySheet), 2)
	assert.Len(t, f.mem.Rows(repository.LinkedInSheet), 2)
}

// slowPublisher blocks every forward until released and then marks the
// backup entry published.
type slowPublisher struct {
	backup  repository.BackupRepository
	calls   atomic.Int32
	started chan string
	release chan struct{}
}

func (p *slowPublisher) Publish(ctx context.Context, post *models.ScheduledPost) error {
	p.calls.Add(1)
	p.started <- post.ID
	<-p.release
	_, err := p.backup.Update(post.ID, func(sp *models.ScheduledPost) {
		sp.Status = models.PostStatusPublished
	})
	return err
}

func TestReconcileDuringPublishDoesNotRefire(t *testing.T) {
	backup, err := repository.NewBackupRepository(filepath.Join(t.TempDir(), "schedules.json"))
	require.NoError(t, err)
	pub := &slowPublisher{backup: backup, started: make(chan string, 4), release: make(chan struct{})}
	timers := queue.NewTimerQueue(pub)
	defer timers.Close()

	svc := NewScheduleService(repository.NewSheetRepository(repository.NewMemorySheets()), backup, timers, NewMediaService(nil), nil, time.Second)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.ScheduleRequest{
		Platform:    "linkedin",
		Content:     "due now",
		PublishTime: time.Now().Add(-time.Minute).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not start")
	}

	require.NoError(t, svc.Reconcile(ctx, true))
	close(pub.release)

	assert.Eventually(t, func() bool { return !timers.Armed(post.ID) }, time.Second, 10*time.Millisecond)
	require.NoError(t, svc.Reconcile(ctx, true))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), pub.calls.Load())
	got, ok := backup.Get(post.ID)
	require.True(t, ok)
	assert.Equal(t, models.PostStatusPublished, got.Status)
}
