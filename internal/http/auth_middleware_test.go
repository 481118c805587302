package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTestRouter(t *testing.T, apiKeyHash string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(APIKeyMiddleware(apiKeyHash, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func TestGenerateAPIKey(t *testing.T) {
	plainKey, hashedKey, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.NotEmpty(t, plainKey)
	assert.Contains(t, hashedKey, "$argon2id$")
	assert.NotContains(t, hashedKey, plainKey)

	// Keys must be unique per invocation
	otherKey, _, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, plainKey, otherKey)
}

func TestAPIKeyMiddleware(t *testing.T) {
	plainKey, hashedKey, err := GenerateAPIKey()
	require.NoError(t, err)

	t.Run("valid-key", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+plainKey)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("case-insensitive-bearer", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "bearer "+plainKey)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing-header", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed-header", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty-key", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer ")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong-key", func(t *testing.T) {
		router := setupAuthTestRouter(t, hashedKey)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer wrong-key")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
