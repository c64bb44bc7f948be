package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type LinkedIn struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenFile    string
}

type Config struct {
	Port                  string
	GoogleSheetID         string
	GoogleCredentialsFile string
	GoogleAPIKey          string
	ScheduleSecret        string
	WebhookURL            string
	ScheduleFile          string
	SchedulerBackend      string
	RedisURI              string
	PostgresURI           string
	RestoreTimers         bool
	RemoteTimeout         time.Duration
	ReconcileSpec         string
	TokenRefreshSpec      string
	FrontendURL           string
	LinkedIn              LinkedIn
	R2                    R2
	SecretKey             string
}

const (
	SchedulerBackendMemory = "memory"
	SchedulerBackendAsynq  = "asynq"
)

func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "3001"),
		GoogleSheetID:         getEnv("GOOGLE_SHEET_ID", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "google-credentials.json"),
		GoogleAPIKey:          getEnv("GOOGLE_API_KEY", ""),
		ScheduleSecret:        getEnv("SCHEDULE_SECRET", ""),
		WebhookURL:            getEnv("ZAPIER_WEBHOOK_URL", ""),
		ScheduleFile:          getEnv("SCHEDULE_FILE", "schedules.json"),
		SchedulerBackend:      getEnv("SCHEDULER_BACKEND", SchedulerBackendMemory),
		RedisURI:              getEnv("REDIS_URI", "127.0.0.1:6379"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RestoreTimers:         cast.ToBool(getEnv("RESTORE_TIMERS", "true")),
		RemoteTimeout:         getDuration("REMOTE_TIMEOUT", 15*time.Second),
		ReconcileSpec:         getEnv("RECONCILE_SPEC", "@every 00h05m00s"),
		TokenRefreshSpec:      getEnv("TOKEN_REFRESH_SPEC", "@every 00h10m00s"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		LinkedIn: LinkedIn{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", "http://localhost:3001/auth/linkedin/callback"),
			TokenFile:    getEnv("LINKEDIN_TOKEN_FILE", "linkedin_tokens.json"),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey: getEnv("SECRET_KEY", ""),
	}
}

// Enabled reports whether enough R2 settings are present to upload objects.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := cast.ToDurationE(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
