package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/postsheet/internal/models"
)

type BackupRepository interface {
	Read() []*models.ScheduledPost
	Write(posts []*models.ScheduledPost) error
	Append(post *models.ScheduledPost) error
	Remove(id string) (bool, error)
	Update(id string, fn func(*models.ScheduledPost)) (bool, error)
	Get(id string) (*models.ScheduledPost, bool)
}

type backupRepository struct {
	path string
	mu   sync.Mutex
}

// NewBackupRepository opens the local schedule file, creating it as an empty
// list when it does not exist.
func NewBackupRepository(path string) (BackupRepository, error) {
	r := &backupRepository{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.write(nil); err != nil {
			return nil, fmt.Errorf("create schedule file: %w", err)
		}
		slog.Info("created schedule file", "path", path)
	} else if err != nil {
		return nil, err
	}
	return r, nil
}

// Read returns the stored list. An unreadable or corrupt file reads as empty.
func (r *backupRepository) Read() []*models.ScheduledPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts, err := r.read()
	if err != nil {
		slog.Error("schedule file is unreadable, reading as empty", "path", r.path, "error", err)
		return []*models.ScheduledPost{}
	}
	return posts
}

func (r *backupRepository) Write(posts []*models.ScheduledPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(posts)
}

// Append, Remove and Update refuse to rewrite a file they could not parse.
func (r *backupRepository) Append(post *models.ScheduledPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts, err := r.read()
	if err != nil {
		return err
	}
	posts = append(posts, post)
	return r.write(posts)
}

func (r *backupRepository) Remove(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.read()
	if err != nil {
		return false, err
	}
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return false, nil
	}
	return true, r.write(kept)
}

// Update applies fn to every entry with the given id and reports whether one
// was found.
func (r *backupRepository) Update(id string, fn func(*models.ScheduledPost)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.read()
	if err != nil {
		return false, err
	}
	found := false
	for _, p := range posts {
		if p.ID == id {
			fn(p)
			found = true
		}
	}
	if !found {
		return false, nil
	}
	return true, r.write(posts)
}

func (r *backupRepository) Get(id string) (*models.ScheduledPost, bool) {
	for _, p := range r.Read() {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// read treats a missing file as empty. Any other failure is returned so the
// caller does not overwrite entries it could not see.
func (r *backupRepository) read() ([]*models.ScheduledPost, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*models.ScheduledPost{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}

	var posts []*models.ScheduledPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("%w: schedule file %s: %v", ErrCorruptBackup, r.path, err)
	}
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return posts, nil
}

func (r *backupRepository) write(posts []*models.ScheduledPost) error {
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
