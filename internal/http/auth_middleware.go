package http

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"

	pwdhash "github.com/allisson/go-pwdhash"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/httputil"
)

// newAPIKeyHasher creates the Argon2id hasher used for API key generation and
// verification. Uses the Moderate policy for a balance between security and
// performance.
func newAPIKeyHasher() *pwdhash.PasswordHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}
	return hasher
}

// GenerateAPIKey creates a new cryptographically secure 32-byte random API key
// and its Argon2id hash. The plain key is shown to the operator once; only the
// hash is configured on the server.
func GenerateAPIKey() (plainKey string, hashedKey string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random api key")
	}

	plainKey = base64.URLEncoding.EncodeToString(randomBytes)

	hashedKey, err = newAPIKeyHasher().Hash([]byte(plainKey))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash api key")
	}

	return plainKey, hashedKey, nil
}

// APIKeyMiddleware authenticates requests via Bearer token in the Authorization
// header, verified against the configured Argon2id hash.
//
// Authorization header format: "Bearer <key>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Key does not match configured hash → 401 Unauthorized
func APIKeyMiddleware(apiKeyHash string, logger *slog.Logger) gin.HandlerFunc {
	hasher := newAPIKeyHasher()

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainKey := authHeader[len(bearerPrefix):]
		if plainKey == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		ok, err := hasher.Verify([]byte(plainKey), apiKeyHash)
		if err != nil || !ok {
			logger.Debug("authentication failed: api key mismatch")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
