package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/todoapp-go/config"
)

// ErrInvalidToken is returned by Verify for every rejected token: bad
// signature, wrong algorithm, malformed payload, expired, or an unusable
// subject claim. Callers that want detail can unwrap it.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies signed, time-limited bearer tokens that
// encode a user identity. Verification is stateless: a token is valid iff
// its HS256 signature checks out against the configured secret and its
// expiry has not passed. There is no revocation list; a minted token stays
// valid until it expires.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewTokenService creates a TokenService from the auth configuration.
// The configuration is immutable after startup.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		defaultTTL: cfg.AccessTokenDuration,
	}
}

// Issue produces a signed token whose subject is the string-encoded user id
// and whose expiry is now + ttl. A non-positive ttl selects the configured
// default.
func (s *TokenService) Issue(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes and signature-checks the token and returns the user id
// from its subject claim. Any failure — invalid signature, algorithm other
// than HS256, malformed token, missing expiry, expired, missing subject, or
// a subject that is not an integer — yields ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Pin the exact algorithm. Accepting any HMAC variant would let a
		// token signed as HS384/HS512 through.
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.Subject == "" {
		return 0, fmt.Errorf("%w: subject claim is missing", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return userID, nil
}
