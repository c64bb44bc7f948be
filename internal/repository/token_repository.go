package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

var ErrTokenNotFound = errors.New("no token stored for platform")

// TokenRepository keeps one OAuth token per platform in a JSON file. Each
// token is sealed with AES-GCM before it touches disk.
type TokenRepository interface {
	Save(token *models.PlatformToken) error
	Get(platform string) (*models.PlatformToken, error)
	List() ([]*models.PlatformToken, error)
	Delete(platform string) error
}

type tokenRepository struct {
	path string
	key  []byte
	mu   sync.Mutex
}

func NewTokenRepository(path string, key []byte) TokenRepository {
	return &tokenRepository{path: path, key: key}
}

func (r *tokenRepository) Save(token *models.PlatformToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sealed, err := r.load()
	if err != nil {
		return err
	}

	plain, err := json.Marshal(token)
	if err != nil {
		return err
	}
	enc, err := utils.Encrypt(plain, r.key)
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	sealed[token.Platform] = enc
	return r.store(sealed)
}

func (r *tokenRepository) Get(platform string) (*models.PlatformToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sealed, err := r.load()
	if err != nil {
		return nil, err
	}
	enc, ok := sealed[platform]
	if !ok {
		return nil, fmt.Errorf("%s: %w", platform, ErrTokenNotFound)
	}
	return r.open(enc)
}

func (r *tokenRepository) List() ([]*models.PlatformToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sealed, err := r.load()
	if err != nil {
		return nil, err
	}

	tokens := make([]*models.PlatformToken, 0, len(sealed))
	for platform, enc := range sealed {
		token, err := r.open(enc)
		if err != nil {
			slog.Error("unable to decrypt stored token", "platform", platform, "error", err)
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *tokenRepository) Delete(platform string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sealed, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := sealed[platform]; !ok {
		return nil
	}
	delete(sealed, platform)
	return r.store(sealed)
}

func (r *tokenRepository) open(enc string) (*models.PlatformToken, error) {
	plain, err := utils.Decrypt(enc, r.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt token: %w", err)
	}
	var token models.PlatformToken
	if err := json.Unmarshal([]byte(plain), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) load() (map[string]string, error) {
	sealed := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return sealed, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return sealed, nil
	}
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return sealed, nil
}

func (r *tokenRepository) store(sealed map[string]string) error {
	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}
