package repository

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound means no scanned sheet contains the requested post id.
	ErrNotFound = errors.New("post not found in any sheet")
	// ErrAuthentication means a spreadsheet session could not be established.
	ErrAuthentication = errors.New("spreadsheet authentication failed")
	// ErrTransient wraps every other remote failure.
	ErrTransient = errors.New("spreadsheet request failed")
	// ErrCorruptBackup means the schedule file exists but cannot be parsed.
	ErrCorruptBackup = errors.New("schedule file is corrupt")
)

// classify maps a raw backend error onto the store's error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransient) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%s: %w: %v", op, ErrAuthentication, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}
