package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal PNG signature and IHDR chunk header
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestOffloadPassesThroughURLs(t *testing.T) {
	storage := &memoryStorage{}
	svc := NewMediaService(storage)

	got, err := svc.Offload(context.Background(), "post_1_a", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", got)
	assert.Empty(t, storage.uploads)

	got, err = NewMediaService(nil).Offload(context.Background(), "post_1_a", "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got)
}

func TestOffloadUploadsDataURI(t *testing.T) {
	storage := &memoryStorage{}
	svc := NewMediaService(storage)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	got, err := svc.Offload(context.Background(), "post_2_b", uri)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "https://media.example.com/posts/post_2_b/"))
	assert.True(t, strings.HasSuffix(got, ".png"))
	require.Len(t, storage.uploads, 1)
}

func TestOffloadRejectsBadPayloads(t *testing.T) {
	svc := NewMediaService(&memoryStorage{})
	ctx := context.Background()

	_, err := svc.Offload(ctx, "post_3_c", "data:image/png;base64")
	assert.True(t, IsValidationError(err))

	_, err = svc.Offload(ctx, "post_3_c", "data:text/plain,hello")
	assert.True(t, IsValidationError(err))

	_, err = svc.Offload(ctx, "post_3_c", "data:text/plain;base64,"+base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.True(t, IsValidationError(err))
}

func TestOffloadUploadFailure(t *testing.T) {
	svc := NewMediaService(&memoryStorage{err: errRemote})

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	_, err := svc.Offload(context.Background(), "post_4_d", uri)
	assert.ErrorIs(t, err, errRemote)
	assert.False(t, IsValidationError(err))
}
