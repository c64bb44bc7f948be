package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/transfer"
	"github.com/maheshrc27/postsheet/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testStateSecret = "state-secret"

func newLinkedInFixture(t *testing.T) (*linkedInService, repository.TokenRepository) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			assert.Equal(t, "good-code", r.Form.Get("code"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"expires_in":    3600,
				"token_type":    "Bearer",
			})
		case "refresh_token":
			assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-2",
				"expires_in":   7200,
				"token_type":   "Bearer",
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 "member-42",
			"localizedFirstName": "Ada",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := repository.NewTokenRepository(filepath.Join(t.TempDir(), "tokens.json"), utils.DeriveKey("k"))
	svc := newLinkedInService(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3001/auth/linkedin/callback",
		Scopes:       []string{"r_liteprofile", "w_member_social"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/authorize",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, tokens, testStateSecret, srv.URL+"/me")
	return svc, tokens
}

func TestLinkedInAuthURLCarriesSignedState(t *testing.T) {
	svc, _ := newLinkedInFixture(t)

	raw, err := svc.GetAuthURL(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "r_liteprofile w_member_social", u.Query().Get("scope"))

	claims, err := utils.ValidateStateToken(testStateSecret, u.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, models.PlatformLinkedIn, claims.Platform)
}

func TestLinkedInCallbackStoresToken(t *testing.T) {
	svc, tokens := newLinkedInFixture(t)
	ctx := context.Background()

	state, err := utils.GenerateStateToken(testStateSecret, models.PlatformLinkedIn, time.Minute)
	require.NoError(t, err)

	token, err := svc.HandleCallback(ctx, &transfer.LinkedInCallback{Code: "good-code", State: state})
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, "member-42", token.UserID)
	assert.Equal(t, "Ada", token.Profile["localizedFirstName"])
	assert.Greater(t, token.ExpiresAt, time.Now().UnixMilli())

	stored, err := tokens.Get(models.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)

	got, err := svc.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "member-42", got.UserID)
}

func TestLinkedInCallbackRejectsBadState(t *testing.T) {
	svc, _ := newLinkedInFixture(t)
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, &transfer.LinkedInCallback{Code: "good-code"})
	assert.True(t, IsValidationError(err))

	forged, err := utils.GenerateStateToken("other-secret", models.PlatformLinkedIn, time.Minute)
	require.NoError(t, err)
	_, err = svc.HandleCallback(ctx, &transfer.LinkedInCallback{Code: "good-code", State: forged})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLinkedInTokensMissingAndExpired(t *testing.T) {
	svc, tokens := newLinkedInFixture(t)
	ctx := context.Background()

	_, err := svc.Tokens(ctx)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	require.NoError(t, tokens.Save(&models.PlatformToken{
		AccessToken: "old",
		ExpiresAt:   time.Now().Add(-time.Minute).UnixMilli(),
		Platform:    models.PlatformLinkedIn,
	}))
	_, err = svc.Tokens(ctx)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLinkedInRefreshKeepsRefreshToken(t *testing.T) {
	svc, tokens := newLinkedInFixture(t)
	require.NoError(t, tokens.Save(&models.PlatformToken{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(5 * time.Minute).UnixMilli(),
		Platform:     models.PlatformLinkedIn,
		UserID:       "member-42",
	}))

	require.NoError(t, svc.RefreshExpiring(context.Background(), 30*time.Minute))

	stored, err := tokens.Get(models.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
	assert.Equal(t, "member-42", stored.UserID)
	assert.Greater(t, stored.ExpiresAt, time.Now().Add(time.Hour).UnixMilli())
}

func TestLinkedInRefreshExpiringSkipsFreshOrMissing(t *testing.T) {
	svc, tokens := newLinkedInFixture(t)
	ctx := context.Background()

	assert.NoError(t, svc.RefreshExpiring(ctx, 30*time.Minute))

	require.NoError(t, tokens.Save(&models.PlatformToken{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(24 * time.Hour).UnixMilli(),
		Platform:     models.PlatformLinkedIn,
	}))
	require.NoError(t, svc.RefreshExpiring(ctx, 30*time.Minute))

	stored, err := tokens.Get(models.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
}
