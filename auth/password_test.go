package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	hasher := NewPasswordHasher()

	digest, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "pbkdf2_sha256$"))
	assert.NotContains(t, digest, "secret123")

	assert.True(t, hasher.Verify("secret123", digest))
	assert.False(t, hasher.Verify("secret124", digest))
	assert.False(t, hasher.Verify("", digest))
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	// A fresh salt per call means identical inputs produce different
	// digests, and both still verify.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

func TestVerifyDifferentPasswords(t *testing.T) {
	hasher := NewPasswordHasher()

	digest, err := hasher.Hash("password-one")
	require.NoError(t, err)
	assert.False(t, hasher.Verify("password-two", digest))
}

func TestVerifyMalformedDigest(t *testing.T) {
	hasher := NewPasswordHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"not a digest", "hunter2"},
		{"wrong scheme", "bcrypt$12$abc$def"},
		{"missing parts", "pbkdf2_sha256$290000$onlysalt"},
		{"bad iteration count", "pbkdf2_sha256$many$c2FsdA$a2V5"},
		{"negative iterations", "pbkdf2_sha256$-1$c2FsdA$a2V5"},
		{"bad salt encoding", "pbkdf2_sha256$290000$!!!$a2V5"},
		{"bad key encoding", "pbkdf2_sha256$290000$c2FsdA$!!!"},
		{"empty key", "pbkdf2_sha256$290000$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Verify must return false, never panic or error.
			assert.False(t, hasher.Verify("secret123", tt.digest))
		})
	}
}
