package service

import (
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
)

// ParsePublishTime accepts RFC 3339 and the zone-less datetime-local form,
// which is read as UTC.
func ParsePublishTime(value string) (time.Time, error) {
	return models.ParsePublishTime(value)
}

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
