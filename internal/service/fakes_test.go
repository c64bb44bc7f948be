package service

import (
	"context"
	"errors"
	"sync"

	"github.com/maheshrc27/postsheet/internal/models"
)

type fakeScheduler struct {
	mu        sync.Mutex
	armed     map[string]*models.ScheduledPost
	cancelled []string
	err       error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{armed: make(map[string]*models.ScheduledPost)}
}

func (f *fakeScheduler) Schedule(ctx context.Context, post *models.ScheduledPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.armed[post.ID] = post
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, id)
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeScheduler) Armed(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.armed[id]
	return ok
}

func (f *fakeScheduler) Close() error { return nil }

// brokenSheets fails every call.
type brokenSheets struct{ err error }

func (b *brokenSheets) Initialize(ctx context.Context) error { return b.err }
func (b *brokenSheets) AddPost(ctx context.Context, post *models.ScheduledPost) (string, error) {
	return post.ID, b.err
}
func (b *brokenSheets) UpdatePostStatus(ctx context.Context, id string, status models.PostStatus, platformPostID string) error {
	return b.err
}
func (b *brokenSheets) GetAllPosts(ctx context.Context) ([]*models.ScheduledPost, error) {
	return nil, b.err
}
func (b *brokenSheets) DeletePost(ctx context.Context, id string) error { return b.err }

type memoryHistory struct {
	mu      sync.Mutex
	entries []*models.PostingHistory
	err     error
}

func (m *memoryHistory) EnsureSchema(ctx context.Context) error { return nil }

func (m *memoryHistory) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	ph.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, ph)
	return ph.ID, nil
}

func (m *memoryHistory) GetByPostID(ctx context.Context, postID string) ([]*models.PostingHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PostingHistory
	for _, e := range m.entries {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryStorage struct {
	uploads map[string][]byte
	err     error
}

func (m *memoryStorage) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[key] = file
	return "https://media.example.com/" + key, nil
}

var errRemote = errors.New("remote unavailable")
