package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/postsheet/configs"
	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/maheshrc27/postsheet/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const (
	LINKEDIN_PROFILE_URL = "https://api.linkedin.com/v2/me"
	stateTokenLifetime   = 10 * time.Minute
)

var (
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidState       = errors.New("invalid oauth state")
	ErrOAuthNotConfigured = errors.New("LinkedIn OAuth configuration is incomplete")
)

type LinkedInService interface {
	GetAuthURL(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, cb *transfer.LinkedInCallback) (*models.PlatformToken, error)
	Tokens(ctx context.Context) (*models.PlatformToken, error)
	Refresh(ctx context.Context) (*models.PlatformToken, error)
	RefreshExpiring(ctx context.Context, within time.Duration) error
}

type linkedInService struct {
	oauth       *oauth2.Config
	tokens      repository.TokenRepository
	stateSecret string
	profileURL  string
	now         func() time.Time
}

func NewLinkedInService(cfg config.LinkedIn, tokens repository.TokenRepository, stateSecret string) LinkedInService {
	endpoint := linkedin.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return newLinkedInService(&oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{"r_liteprofile", "w_member_social"},
		Endpoint:     endpoint,
	}, tokens, stateSecret, LINKEDIN_PROFILE_URL)
}

func newLinkedInService(oauthCfg *oauth2.Config, tokens repository.TokenRepository, stateSecret, profileURL string) *linkedInService {
	return &linkedInService{
		oauth:       oauthCfg,
		tokens:      tokens,
		stateSecret: stateSecret,
		profileURL:  profileURL,
		now:         time.Now,
	}
}

func (s *linkedInService) GetAuthURL(ctx context.Context) (string, error) {
	if s.oauth.ClientID == "" {
		slog.Info(ErrOAuthNotConfigured.Error())
		return "", ErrOAuthNotConfigured
	}
	state, err := utils.GenerateStateToken(s.stateSecret, models.PlatformLinkedIn, stateTokenLifetime)
	if err != nil {
		return "", err
	}
	return s.oauth.AuthCodeURL(state), nil
}

// HandleCallback checks the signed state, exchanges the code and stores the
// token together with the member profile.
func (s *linkedInService) HandleCallback(ctx context.Context, cb *transfer.LinkedInCallback) (*models.PlatformToken, error) {
	if cb == nil {
		return nil, &ValidationError{Message: "Authorization code is required"}
	}
	if err := transfer.Validate(cb); err != nil {
		return nil, &ValidationError{Message: "Authorization code and state are required", Err: err}
	}

	claims, err := utils.ValidateStateToken(s.stateSecret, cb.State)
	if err != nil || claims.Platform != models.PlatformLinkedIn {
		return nil, &ValidationError{Message: "invalid state", Err: ErrInvalidState}
	}

	tok, err := s.oauth.Exchange(ctx, cb.Code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}

	token := &models.PlatformToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    s.expiry(tok).UnixMilli(),
		Platform:     models.PlatformLinkedIn,
		Profile:      profile,
	}
	if id, ok := profile["id"].(string); ok {
		token.UserID = id
	}

	if err := s.tokens.Save(token); err != nil {
		slog.Error("unable to store linkedin token", "error", err)
		return nil, err
	}
	return token, nil
}

// Tokens returns the stored token, or ErrTokenExpired once it has lapsed.
func (s *linkedInService) Tokens(ctx context.Context) (*models.PlatformToken, error) {
	token, err := s.tokens.Get(models.PlatformLinkedIn)
	if err != nil {
		return nil, err
	}
	if token.Expired(s.now()) {
		return nil, ErrTokenExpired
	}
	return token, nil
}

func (s *linkedInService) Refresh(ctx context.Context) (*models.PlatformToken, error) {
	token, err := s.tokens.Get(models.PlatformLinkedIn)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		return nil, errors.New("no refresh token stored for linkedin")
	}

	src := s.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: token.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	token.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		token.RefreshToken = tok.RefreshToken
	}
	token.ExpiresAt = s.expiry(tok).UnixMilli()

	if err := s.tokens.Save(token); err != nil {
		return nil, err
	}
	return token, nil
}

// RefreshExpiring refreshes the stored token when it expires within the
// given window. A missing token is not an error.
func (s *linkedInService) RefreshExpiring(ctx context.Context, within time.Duration) error {
	token, err := s.tokens.Get(models.PlatformLinkedIn)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if token.Expiry().After(s.now().Add(within)) || token.RefreshToken == "" {
		return nil
	}
	_, err = s.Refresh(ctx)
	return err
}

func (s *linkedInService) fetchProfile(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr transfer.LinkedInErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("linkedin profile request failed with status %d: %s", resp.StatusCode, apiErr.Message)
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *linkedInService) expiry(tok *oauth2.Token) time.Time {
	if tok.Expiry.IsZero() {
		return GetExpiresAt(3600)
	}
	return tok.Expiry
}
