package models

import "time"

// PlatformToken is the OAuth token contract shared with the front end.
// ExpiresAt is in epoch milliseconds.
type PlatformToken struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresAt    int64          `json:"expiresAt"`
	Platform     string         `json:"platform"`
	UserID       string         `json:"userId,omitempty"`
	Profile      map[string]any `json:"profile,omitempty"`
}

func (t *PlatformToken) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

func (t *PlatformToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiry())
}
