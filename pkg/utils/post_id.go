package utils

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	postIDPrefix   = "post_"
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 9
)

// NewPostID returns post_<epoch-ms>_<random-suffix>.
func NewPostID() (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate id suffix: %w", err)
	}
	return fmt.Sprintf("%s%d_%s", postIDPrefix, time.Now().UnixMilli(), suffix), nil
}

// FallbackPostID returns post_<epoch-ms>, used when a store has to mint an id
// for a caller that supplied none.
func FallbackPostID() string {
	return fmt.Sprintf("%s%d", postIDPrefix, time.Now().UnixMilli())
}

func IsPostID(id string) bool {
	return strings.HasPrefix(id, postIDPrefix) && len(id) > len(postIDPrefix)
}
