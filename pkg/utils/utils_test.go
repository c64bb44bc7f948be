package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostID_UniqueWithinSameMillisecond(t *testing.T) {
	pattern := regexp.MustCompile(`^post_\d+_[0-9a-z]{9}$`)
	seen := make(map[string]struct{}, 2000)

	for i := 0; i < 2000; i++ {
		id, err := NewPostID()
		require.NoError(t, err)
		require.Regexp(t, pattern, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestFallbackPostID(t *testing.T) {
	id := FallbackPostID()
	assert.Regexp(t, `^post_\d+$`, id)
	assert.True(t, IsPostID(id))
	assert.False(t, IsPostID("post_"))
	assert.False(t, IsPostID("ID"))
}

func TestStateToken_RoundTrip(t *testing.T) {
	token, err := GenerateStateToken("secret", "linkedin", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateStateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "linkedin", claims.Platform)

	_, err = ValidateStateToken("other-secret", token)
	assert.Error(t, err)
}

func TestStateToken_Expired(t *testing.T) {
	token, err := GenerateStateToken("secret", "linkedin", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateStateToken("secret", token)
	assert.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	key := DeriveKey("any length secret")
	require.Len(t, key, 32)

	sealed, err := Encrypt([]byte("access-token"), key)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "access-token")

	plain, err := Decrypt(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "access-token", plain)

	_, err = Decrypt(sealed, DeriveKey("wrong"))
	assert.Error(t, err)
}
