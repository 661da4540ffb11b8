package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-SHA256 parameters. The iteration count is a fixed constant:
// changing it only affects newly created digests, because each digest
// records the count it was produced with.
const (
	pbkdf2Scheme     = "pbkdf2_sha256"
	pbkdf2Iterations = 290000
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32
)

// PasswordHasher performs one-way password hashing and verification using
// salted, iterated PBKDF2-SHA256. Each call to Hash draws a fresh random
// salt, so hashing the same password twice yields different digests.
type PasswordHasher struct{}

// NewPasswordHasher creates a new PasswordHasher.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash derives a salted digest from the plaintext password. The digest is
// self-describing: "pbkdf2_sha256$<iterations>$<salt>$<key>" with salt and
// key base64-encoded. The plaintext is never stored or logged.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plaintext), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		pbkdf2Scheme,
		pbkdf2Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether digest was produced from plaintext. It never
// returns an error: a malformed digest, an unknown scheme, or a mismatch
// all yield false. The comparison is constant-time.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Scheme {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(plaintext), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
