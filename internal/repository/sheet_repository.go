package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

type SheetRepository interface {
	Initialize(ctx context.Context) error
	AddPost(ctx context.Context, post *models.ScheduledPost) (string, error)
	UpdatePostStatus(ctx context.Context, id string, status models.PostStatus, platformPostID string) error
	GetAllPosts(ctx context.Context) ([]*models.ScheduledPost, error)
	DeletePost(ctx context.Context, id string) error
}

type sheetRepository struct {
	backend SheetsBackend
	ids     *utils.KeyedMutex
	// row indexes shift on delete; held from locating a row until it is mutated
	sheets *utils.KeyedMutex

	initMu sync.Mutex
	ready  bool
}

func NewSheetRepository(backend SheetsBackend) SheetRepository {
	return &sheetRepository{
		backend: backend,
		ids:     utils.NewKeyedMutex(),
		sheets:  utils.NewKeyedMutex(),
	}
}

// Initialize creates every missing sheet with its header row and formats the
// header once. Sheets that already exist are left untouched.
func (r *sheetRepository) Initialize(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	titles, err := r.backend.SheetTitles(ctx)
	if err != nil {
		slog.Error("unable to list sheets", "error", err)
		return classify("list sheets", err)
	}

	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	layouts := append(append([]sheetLayout{}, platformLayouts...), legacyLayout)
	for _, layout := range layouts {
		if existing[layout.title] {
			continue
		}
		if err := r.createSheet(ctx, layout); err != nil {
			return err
		}
		slog.Info("sheet created and initialized", "sheet", layout.title)
	}

	r.ready = true
	return nil
}

func (r *sheetRepository) createSheet(ctx context.Context, layout sheetLayout) error {
	if err := r.backend.AddSheet(ctx, layout.title); err != nil {
		return classify("add sheet "+layout.title, err)
	}
	if err := r.backend.WriteHeader(ctx, layout.title, layout.headers()); err != nil {
		return classify("write header "+layout.title, err)
	}
	if err := r.backend.FormatHeader(ctx, layout.title); err != nil {
		// the sheet is usable without formatting
		slog.Info("skipping header formatting", "sheet", layout.title, "error", err)
	}
	return nil
}

func (r *sheetRepository) ensureReady(ctx context.Context) error {
	r.initMu.Lock()
	ready := r.ready
	r.initMu.Unlock()
	if ready {
		return nil
	}
	return r.Initialize(ctx)
}

// AddPost appends the legacy ledger row and, for platforms with a dedicated
// sheet, the platform row. Both appends are attempted independently.
func (r *sheetRepository) AddPost(ctx context.Context, post *models.ScheduledPost) (string, error) {
	if err := r.ensureReady(ctx); err != nil {
		return "", err
	}

	if post.ID == "" {
		post.ID = utils.FallbackPostID()
	}

	slog.Info("adding post to sheets",
		"post_id", post.ID,
		"platform", models.PlatformLabel(post.Platform),
		"content_length", len(post.Content),
		"publish_time", post.PublishTime.UTC())

	var errs []error
	if err := r.backend.AppendRow(ctx, LegacySheet, legacyLayout.encode(post)); err != nil {
		slog.Error("unable to append legacy row", "post_id", post.ID, "error", err)
		errs = append(errs, classify("append "+LegacySheet, err))
	}

	if layout, ok := layoutForPlatform(post.Platform); ok {
		if err := r.backend.AppendRow(ctx, layout.title, layout.encode(post)); err != nil {
			slog.Error("unable to append platform row", "post_id", post.ID, "sheet", layout.title, "error", err)
			errs = append(errs, classify("append "+layout.title, err))
		}
	}

	return post.ID, errors.Join(errs...)
}

// UpdatePostStatus updates the first sheet holding id. In the legacy ledger
// the status column is overwritten; in a platform sheet only the downstream
// post id column is, and only when platformPostID is set.
func (r *sheetRepository) UpdatePostStatus(ctx context.Context, id string, status models.PostStatus, platformPostID string) error {
	if err := r.ensureReady(ctx); err != nil {
		return err
	}

	unlock := r.ids.Lock(id)
	defer unlock()

	layout, row, release, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if layout.legacy {
		if err := r.backend.UpdateCell(ctx, layout.title, row, layout.index(colStatus), string(status)); err != nil {
			return classify("update status", err)
		}
		slog.Info("post status updated", "post_id", id, "sheet", layout.title, "status", status)
		return nil
	}

	if platformPostID == "" {
		slog.Info("no platform post id provided, platform sheet unchanged", "post_id", id, "sheet", layout.title)
		return nil
	}
	if err := r.backend.UpdateCell(ctx, layout.title, row, layout.index(colPostID), platformPostID); err != nil {
		return classify("update platform post id", err)
	}
	slog.Info("platform post id updated", "post_id", id, "sheet", layout.title, "platform_post_id", platformPostID)
	return nil
}

// GetAllPosts concatenates every sheet in scan order. A post present in both
// a platform sheet and the ledger is reported once, from the platform sheet.
func (r *sheetRepository) GetAllPosts(ctx context.Context) ([]*models.ScheduledPost, error) {
	if err := r.ensureReady(ctx); err != nil {
		return nil, err
	}

	layouts, err := r.scanOrder(ctx)
	if err != nil {
		return nil, err
	}

	var posts []*models.ScheduledPost
	seen := make(map[string]bool)
	for _, layout := range layouts {
		rows, err := r.backend.ReadRows(ctx, layout.title, len(layout.fields))
		if err != nil {
			return nil, classify("read "+layout.title, err)
		}
		if len(rows) <= 1 {
			continue
		}
		for _, row := range rows[1:] {
			post := layout.decode(row)
			if post.ID == "" || seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// DeletePost removes the first row holding id.
func (r *sheetRepository) DeletePost(ctx context.Context, id string) error {
	if err := r.ensureReady(ctx); err != nil {
		return err
	}

	unlock := r.ids.Lock(id)
	defer unlock()

	layout, row, release, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if err := r.backend.DeleteRow(ctx, layout.title, row); err != nil {
		return classify("delete row", err)
	}
	slog.Info("post deleted from sheet", "post_id", id, "sheet", layout.title, "row", row+1)
	return nil
}

// locate finds the sheet holding id, locks that sheet and reads the row index
// again under the lock. The returned release must be called once the row has
// been mutated.
func (r *sheetRepository) locate(ctx context.Context, id string) (sheetLayout, int, func(), error) {
	layout, err := r.find(ctx, id)
	if err != nil {
		return sheetLayout{}, 0, nil, err
	}

	release := r.sheets.Lock(layout.title)
	row, err := r.rowOf(ctx, layout, id)
	if err != nil {
		release()
		return sheetLayout{}, 0, nil, err
	}
	return layout, row, release, nil
}

func (r *sheetRepository) find(ctx context.Context, id string) (sheetLayout, error) {
	layouts, err := r.scanOrder(ctx)
	if err != nil {
		return sheetLayout{}, err
	}

	for _, layout := range layouts {
		_, err := r.rowOf(ctx, layout, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return sheetLayout{}, err
		}
		return layout, nil
	}
	return sheetLayout{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

func (r *sheetRepository) rowOf(ctx context.Context, layout sheetLayout, id string) (int, error) {
	rows, err := r.backend.ReadRows(ctx, layout.title, len(layout.fields))
	if err != nil {
		return 0, classify("read "+layout.title, err)
	}
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][0] == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s in %s: %w", id, layout.title, ErrNotFound)
}

// scanOrder lists the existing platform sheets followed by the legacy sheet.
func (r *sheetRepository) scanOrder(ctx context.Context) ([]sheetLayout, error) {
	titles, err := r.backend.SheetTitles(ctx)
	if err != nil {
		return nil, classify("list sheets", err)
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	var layouts []sheetLayout
	for _, l := range platformLayouts {
		if existing[l.title] {
			layouts = append(layouts, l)
		}
	}
	if existing[LegacySheet] {
		layouts = append(layouts, legacyLayout)
	}
	return layouts, nil
}
