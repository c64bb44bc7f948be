package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackup(t *testing.T) (BackupRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedules.json")
	repo, err := NewBackupRepository(path)
	require.NoError(t, err)
	return repo, path
}

func TestBackupCreatesEmptyList(t *testing.T) {
	repo, path := newBackup(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Empty(t, repo.Read())
}

func TestBackupKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"post_1_a","platform":"blog"}]`), 0o644))

	repo, err := NewBackupRepository(path)
	require.NoError(t, err)
	posts := repo.Read()
	require.Len(t, posts, 1)
	assert.Equal(t, "post_1_a", posts[0].ID)
}

func TestBackupCorruptFileReadsEmptyAndIsNotOverwritten(t *testing.T) {
	repo, path := newBackup(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Empty(t, repo.Read())
	_, ok := repo.Get("post_2_b")
	assert.False(t, ok)

	err := repo.Append(&models.ScheduledPost{ID: "post_2_b"})
	assert.ErrorIs(t, err, ErrCorruptBackup)
	_, err = repo.Remove("post_2_b")
	assert.ErrorIs(t, err, ErrCorruptBackup)
	_, err = repo.Update("post_2_b", func(p *models.ScheduledPost) {})
	assert.ErrorIs(t, err, ErrCorruptBackup)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestBackupReadsDatetimeLocalPublishTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	legacy := `[
  {
    "id": "post_1_abc",
    "platform": "linkedin",
    "title": "",
    "content": "hello",
    "imageUrl": null,
    "publishTime": "2030-01-01T10:00",
    "status": "pending",
    "createdAt": "2029-12-31T08:15:00.123Z",
    "updatedAt": "2029-12-31T08:15:00.123Z"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	repo, err := NewBackupRepository(path)
	require.NoError(t, err)

	posts := repo.Read()
	require.Len(t, posts, 1)
	assert.Equal(t, time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), posts[0].PublishTime)
	assert.Equal(t, models.PostStatusPending, posts[0].Status)

	require.NoError(t, repo.Append(&models.ScheduledPost{ID: "post_2_new", Platform: "blog"}))

	posts = repo.Read()
	require.Len(t, posts, 2)
	assert.Equal(t, "post_1_abc", posts[0].ID)
	assert.Equal(t, "post_2_new", posts[1].ID)
	assert.Equal(t, time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), posts[0].PublishTime)
}

func TestBackupWriteIsPrettyPrinted(t *testing.T) {
	repo, path := newBackup(t)
	require.NoError(t, repo.Write([]*models.ScheduledPost{{ID: "post_3_c", Platform: "linkedin"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"post_3_c\"")
}

func TestBackupRemoveUpdateGet(t *testing.T) {
	repo, _ := newBackup(t)
	require.NoError(t, repo.Append(&models.ScheduledPost{ID: "post_4_d", Status: models.PostStatusPending}))
	require.NoError(t, repo.Append(&models.ScheduledPost{ID: "post_5_e", Status: models.PostStatusPending}))

	found, err := repo.Update("post_4_d", func(p *models.ScheduledPost) {
		p.Status = models.PostStatusPublished
	})
	require.NoError(t, err)
	assert.True(t, found)

	p, ok := repo.Get("post_4_d")
	require.True(t, ok)
	assert.Equal(t, models.PostStatusPublished, p.Status)

	found, err = repo.Update("post_missing", func(p *models.ScheduledPost) {})
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := repo.Remove("post_4_d")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove("post_4_d")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok = repo.Get("post_4_d")
	assert.False(t, ok)
	assert.Len(t, repo.Read(), 1)
}

func TestBackupConcurrentAppends(t *testing.T) {
	repo, _ := newBackup(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(&models.ScheduledPost{ID: fmt.Sprintf("post_%d_x", i)}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.Read(), 20)
}
