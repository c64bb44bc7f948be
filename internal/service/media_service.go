package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {},
}

// MediaService moves inline images out of the request before they reach the
// spreadsheet, whose cells are size-limited.
type MediaService interface {
	Offload(ctx context.Context, postID, imageURL string) (string, error)
}

type mediaService struct {
	storage ObjectStorage
}

// NewMediaService returns a service that uploads data URIs to storage. With a
// nil storage every image URL is passed through unchanged.
func NewMediaService(storage ObjectStorage) MediaService {
	return &mediaService{storage: storage}
}

func (s *mediaService) Offload(ctx context.Context, postID, imageURL string) (string, error) {
	if s.storage == nil || !strings.HasPrefix(imageURL, "data:") {
		return imageURL, nil
	}

	data, err := decodeDataURI(imageURL)
	if err != nil {
		return "", &ValidationError{Message: "invalid imageUrl", Err: err}
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "", &ValidationError{Message: "unsupported image type"}
	}
	if _, ok := allowedImageTypes[kind.Extension]; !ok {
		return "", &ValidationError{Message: fmt.Sprintf("image type %s is not allowed", kind.Extension)}
	}

	suffix, err := gonanoid.New(12)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("posts/%s/%s.%s", postID, suffix, kind.Extension)

	url, err := s.storage.Upload(ctx, key, data, kind.MIME.Value)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

// decodeDataURI accepts data:<mime>;base64,<payload>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}
