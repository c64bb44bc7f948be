// Package client keeps a local, TOML-backed view of scheduled posts and talks
// to the schedule API.
package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

// Remote is the part of the schedule API the facade forwards to.
type Remote interface {
	Schedule(ctx context.Context, req *transfer.ScheduleRequest) (*models.ScheduledPost, error)
	Delete(ctx context.Context, id string) error
}

var _ Remote = (*APIClient)(nil)

type Connection struct {
	Platform     string `toml:"platform"`
	IsConnected  bool   `toml:"is_connected"`
	AccountName  string `toml:"account_name,omitempty"`
	ProfileImage string `toml:"profile_image,omitempty"`
}

type Draft struct {
	Title    string `toml:"title,omitempty"`
	Content  string `toml:"content"`
	ImageURL string `toml:"image_url,omitempty"`
	Platform string `toml:"platform"`
}

type PostInput struct {
	Platform    string
	Title       string
	Content     string
	ImageURL    string
	PublishTime time.Time
	Hashtags    string
	BoardName   string
}

type state struct {
	Posts       []*models.ScheduledPost `toml:"posts"`
	Connections []Connection            `toml:"connections"`
	Draft       *Draft                  `toml:"draft,omitempty"`
}

var connectionPlatforms = []string{models.PlatformPinterest, models.PlatformLinkedIn, models.PlatformInstagram}

type Facade struct {
	mu     sync.Mutex
	path   string
	remote Remote
	st     state
}

// NewFacade rehydrates state from path. A missing or unreadable file starts
// from defaults.
func NewFacade(path string, remote Remote) *Facade {
	return &Facade{
		path:   path,
		remote: remote,
		st:     loadState(path),
	}
}

func (f *Facade) Posts() []*models.ScheduledPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ScheduledPost, len(f.st.Posts))
	for i, p := range f.st.Posts {
		cp := *p
		out[i] = &cp
	}
	return out
}

func (f *Facade) Connections() []Connection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Connection(nil), f.st.Connections...)
}

// AddScheduledPost records a pending post locally, newest first.
func (f *Facade) AddScheduledPost(in PostInput) (*models.ScheduledPost, error) {
	id, err := utils.NewPostID()
	if err != nil {
		return nil, err
	}
	post := &models.ScheduledPost{
		ID:          id,
		Platform:    in.Platform,
		Title:       in.Title,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		PublishTime: in.PublishTime.UTC(),
		Status:      models.PostStatusPending,
		Hashtags:    in.Hashtags,
		BoardName:   in.BoardName,
		CreatedAt:   time.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Posts = append([]*models.ScheduledPost{post}, f.st.Posts...)
	cp := *post
	return &cp, f.save()
}

// RemoveScheduledPost drops the post from the local list only.
func (f *Facade) RemoveScheduledPost(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.st.Posts[:0]
	for _, p := range f.st.Posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.st.Posts = kept
	return f.save()
}

// Schedule adds the post locally, then submits it. On success the local
// entry is replaced by the server's copy; on failure it stays and the error
// is returned.
func (f *Facade) Schedule(ctx context.Context, in PostInput) (*models.ScheduledPost, error) {
	local, err := f.AddScheduledPost(in)
	if err != nil {
		return nil, err
	}
	if f.remote == nil {
		return local, nil
	}

	remote, err := f.remote.Schedule(ctx, &transfer.ScheduleRequest{
		Platform:    in.Platform,
		Title:       in.Title,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		PublishTime: in.PublishTime.UTC().Format(time.RFC3339),
		Hashtags:    in.Hashtags,
		BoardName:   in.BoardName,
	})
	if err != nil {
		return local, fmt.Errorf("schedule remotely: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.st.Posts {
		if p.ID == local.ID {
			f.st.Posts[i] = remote
			break
		}
	}
	cp := *remote
	return &cp, f.save()
}

// Delete removes the post locally and then remotely. The local view stays
// updated when the remote call fails.
func (f *Facade) Delete(ctx context.Context, id string) error {
	localErr := f.RemoveScheduledPost(id)
	if f.remote == nil {
		return localErr
	}
	var remoteErr error
	if err := f.remote.Delete(ctx, id); err != nil {
		remoteErr = fmt.Errorf("delete remotely: %w", err)
	}
	return errors.Join(localErr, remoteErr)
}

// UpdateConnection marks a platform connected or disconnected. Pinterest and
// LinkedIn are always marked connected, with a placeholder account name when
// none is given.
func (f *Facade) UpdateConnection(platform string, connected bool, accountName string) error {
	p := strings.ToLower(strings.TrimSpace(platform))

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, c := range f.st.Connections {
		if c.Platform != p {
			continue
		}
		if p == models.PlatformPinterest || p == models.PlatformLinkedIn {
			if accountName == "" {
				accountName = "Dummy " + p + " Account"
			}
			f.st.Connections[i].IsConnected = true
		} else {
			f.st.Connections[i].IsConnected = connected
		}
		f.st.Connections[i].AccountName = accountName
		return f.save()
	}
	return fmt.Errorf("unknown platform %q", platform)
}

func (f *Facade) ConnectionStatus(platform string) bool {
	p := strings.ToLower(strings.TrimSpace(platform))
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.st.Connections {
		if c.Platform == p {
			return c.IsConnected
		}
	}
	return false
}

// CopyContentToScheduler stashes a draft for the next TakeDraft call,
// replacing any earlier one.
func (f *Facade) CopyContentToScheduler(d Draft) error {
	if d.Platform == "" {
		d.Platform = models.PlatformPinterest
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Draft = &d
	return f.save()
}

// TakeDraft returns the stashed draft and clears it.
func (f *Facade) TakeDraft() (*Draft, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.st.Draft == nil {
		return nil, false, nil
	}
	d := f.st.Draft
	f.st.Draft = nil
	return d, true, f.save()
}

func defaultState() state {
	st := state{}
	for _, p := range connectionPlatforms {
		st.Connections = append(st.Connections, Connection{Platform: p})
	}
	return st
}

func loadState(path string) state {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultState()
	}

	var st state
	if err := toml.Unmarshal(data, &st); err != nil {
		return defaultState()
	}
	if len(st.Connections) == 0 {
		st.Connections = defaultState().Connections
	}
	return st
}

func (f *Facade) save() error {
	if f.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := toml.Marshal(f.st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
