package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postsheet/internal/service"
)

const refreshWindow = 30 * time.Minute

type TokenRefreshJob struct {
	li service.LinkedInService
}

func NewTokenRefreshJob(li service.LinkedInService) *TokenRefreshJob {
	return &TokenRefreshJob{li: li}
}

// RefreshTokens renews the stored LinkedIn token when it expires within the
// next half hour.
func (j *TokenRefreshJob) RefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.li.RefreshExpiring(ctx, refreshWindow); err != nil {
		slog.Info("Unable to refresh tokens for LinkedIn", "error", err)
	}
}
