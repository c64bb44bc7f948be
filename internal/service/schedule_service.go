package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/queue"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

// upper bound on first-match deletes per request
const maxDeletePasses = 8

type ScheduleService interface {
	Create(ctx context.Context, req *transfer.ScheduleRequest) (*models.ScheduledPost, error)
	List(ctx context.Context) []*models.ScheduledPost
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, req *transfer.StatusUpdate) error
	History(ctx context.Context, id string) ([]*models.PostingHistory, error)
	RestoreTimers(ctx context.Context) (int, error)
	Reconcile(ctx context.Context, rearm bool) error
}

type scheduleService struct {
	store     repository.SheetRepository
	backup    repository.BackupRepository
	scheduler queue.Scheduler
	media     MediaService
	history   repository.PostingHistoryRepository
	timeout   time.Duration
	now       func() time.Time

	// serializes Create, Delete, UpdateStatus and the reconcile step per id
	locks *utils.KeyedMutex
}

// NewScheduleService wires the request-facing operations. history may be nil.
func NewScheduleService(
	store repository.SheetRepository,
	backup repository.BackupRepository,
	scheduler queue.Scheduler,
	media MediaService,
	history repository.PostingHistoryRepository,
	timeout time.Duration) ScheduleService {
	return &scheduleService{
		store:     store,
		backup:    backup,
		scheduler: scheduler,
		media:     media,
		history:   history,
		timeout:   timeout,
		now:       time.Now,
		locks:     utils.NewKeyedMutex(),
	}
}

// Create writes the backup entry first, then the sheets, and arms the publish
// timer once the backup holds the post. Every step is attempted; failures
// are joined.
func (s *scheduleService) Create(ctx context.Context, req *transfer.ScheduleRequest) (*models.ScheduledPost, error) {
	if req == nil {
		return nil, &ValidationError{Message: "invalid payload"}
	}
	if err := transfer.Validate(req); err != nil {
		slog.Info(err.Error())
		return nil, &ValidationError{Message: "invalid payload", Err: err}
	}

	publishTime, err := ParsePublishTime(req.PublishTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, &ValidationError{Message: "invalid publishTime", Err: err}
	}

	id, err := utils.NewPostID()
	if err != nil {
		return nil, err
	}

	imageURL, err := s.media.Offload(ctx, id, req.ImageURL)
	if err != nil {
		slog.Error("unable to offload image", "post_id", id, "error", err)
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	now := s.now().UTC()
	post := &models.ScheduledPost{
		ID:          id,
		Platform:    req.Platform,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    imageURL,
		PublishTime: publishTime,
		Status:      models.PostStatusPending,
		Hashtags:    req.Hashtags,
		BoardName:   req.BoardName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var errs []error

	backupErr := s.backup.Append(post)
	if backupErr != nil {
		slog.Error("unable to write schedule backup", "post_id", id, "error", backupErr)
		errs = append(errs, fmt.Errorf("backup: %w", backupErr))
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err = s.store.AddPost(storeCtx, post)
	cancel()
	if err != nil {
		errs = append(errs, fmt.Errorf("sheets: %w", err))
	} else {
		slog.Info("post added to sheets", "post_id", id)
	}

	if backupErr == nil {
		if err := s.scheduler.Schedule(ctx, post); err != nil {
			slog.Error("unable to arm publish timer", "post_id", id, "error", err)
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}

	return post, errors.Join(errs...)
}

// List reads the sheets and falls back to the local backup on any failure.
func (s *scheduleService) List(ctx context.Context) []*models.ScheduledPost {
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.store.GetAllPosts(storeCtx)
	if err != nil {
		slog.Error("unable to read sheets, falling back to local backup", "error", err)
		return s.backup.Read()
	}
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return posts
}

// Delete removes every sheet copy of the post, its backup entry and its
// timer. The returned error is informational; all three are always attempted.
func (s *scheduleService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	var errs []error

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	deleted := 0
	for i := 0; i < maxDeletePasses; i++ {
		err := s.store.DeletePost(storeCtx, id)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			slog.Error("error deleting from sheets", "post_id", id, "error", err)
			errs = append(errs, err)
			break
		}
		deleted++
	}
	cancel()
	if deleted == 0 && len(errs) == 0 {
		slog.Info("post not present in any sheet", "post_id", id)
	}

	if _, err := s.backup.Remove(id); err != nil {
		slog.Error("unable to remove backup entry", "post_id", id, "error", err)
		errs = append(errs, err)
	}

	if err := s.scheduler.Cancel(ctx, id); err != nil {
		slog.Error("unable to cancel publish timer", "post_id", id, "error", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// UpdateStatus writes the sheets first and mirrors the change into the
// backup regardless of the sheet result.
func (s *scheduleService) UpdateStatus(ctx context.Context, id string, req *transfer.StatusUpdate) error {
	if req == nil {
		return &ValidationError{Message: "Status is required"}
	}
	if err := transfer.Validate(req); err != nil {
		slog.Info(err.Error())
		return &ValidationError{Message: "Status is required", Err: err}
	}
	status := models.PostStatus(req.Status)

	unlock := s.locks.Lock(id)
	defer unlock()

	var errs []error

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.store.UpdatePostStatus(storeCtx, id, status, req.PlatformPostID)
	cancel()
	if err != nil {
		slog.Error("error updating post status in sheets", "post_id", id, "error", err)
		errs = append(errs, err)
	}

	now := s.now().UTC()
	if _, err := s.backup.Update(id, func(p *models.ScheduledPost) {
		p.Status = status
		if req.PlatformPostID != "" {
			p.PlatformPostID = req.PlatformPostID
		}
		p.UpdatedAt = now
	}); err != nil {
		slog.Error("unable to update backup entry", "post_id", id, "error", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *scheduleService) History(ctx context.Context, id string) ([]*models.PostingHistory, error) {
	if s.history == nil {
		return []*models.PostingHistory{}, nil
	}
	phs, err := s.history.GetByPostID(ctx, id)
	if err != nil {
		return nil, err
	}
	if phs == nil {
		phs = []*models.PostingHistory{}
	}
	return phs, nil
}

// RestoreTimers arms a timer for every pending backup entry. Entries already
// due fire immediately.
func (s *scheduleService) RestoreTimers(ctx context.Context) (int, error) {
	var errs []error
	armed := 0
	for _, post := range s.backup.Read() {
		if post.Status != models.PostStatusPending {
			continue
		}
		if err := s.scheduler.Schedule(ctx, post); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", post.ID, err))
			continue
		}
		armed++
	}
	return armed, errors.Join(errs...)
}

// Reconcile re-adds pending backup entries that are missing from the sheets
// and, when rearm is set, arms timers that are not armed.
func (s *scheduleService) Reconcile(ctx context.Context, rearm bool) error {
	present, err := s.sheetIDs(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, post := range s.backup.Read() {
		if post.Status != models.PostStatusPending {
			continue
		}
		if err := s.reconcilePost(ctx, post.ID, present[post.ID], rearm); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", post.ID, err))
		}
	}
	return errors.Join(errs...)
}

// reconcilePost works from fresh state under the id lock: a Create or Delete
// that raced the snapshot has finished by then.
func (s *scheduleService) reconcilePost(ctx context.Context, id string, inSheets, rearm bool) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	// Armed before the backup read: a publish keeps its timer armed until the
	// backup says published.
	armed := rearm && s.scheduler.Armed(id)

	post, ok := s.backup.Get(id)
	if !ok || post.Status != models.PostStatusPending {
		return nil
	}

	if !inSheets {
		present, err := s.sheetIDs(ctx)
		if err != nil {
			return err
		}
		if !present[id] {
			storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
			_, err := s.store.AddPost(storeCtx, post)
			cancel()
			if err != nil {
				return err
			}
			slog.Info("restored missing post to sheets", "post_id", id)
		}
	}

	if rearm && !armed {
		return s.scheduler.Schedule(ctx, post)
	}
	return nil
}

func (s *scheduleService) sheetIDs(ctx context.Context) (map[string]bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.store.GetAllPosts(storeCtx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(posts))
	for _, p := range posts {
		ids[p.ID] = true
	}
	return ids, nil
}
