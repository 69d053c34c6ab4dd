package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/all-in-blog/internal/auth"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	t.Run("produces bcrypt digest", func(t *testing.T) {
		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
		assert.NotContains(t, hash, "secret1")
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("too long password errors", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 80))
		assert.Error(t, err)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	for _, password := range []string{"secret1", "newpass1", "pässwörd", " spaces "} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.True(t, hasher.Verify(password, hash), password)
		assert.False(t, hasher.Verify(password+"x", hash), password)
	}

	t.Run("malformed digest is a mismatch", func(t *testing.T) {
		assert.False(t, hasher.Verify("secret1", "not-a-valid-hash"))
		assert.False(t, hasher.Verify("secret1", ""))
	})
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, auth.NewBcryptHasher(0).Cost())
	assert.Equal(t, bcrypt.MinCost, auth.NewBcryptHasher(1).Cost())
	assert.Equal(t, bcrypt.MaxCost, auth.NewBcryptHasher(99).Cost())
	assert.Equal(t, 12, auth.NewBcryptHasher(12).Cost())
}
