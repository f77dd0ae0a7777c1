package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Disabled_ReturnsNil", func(t *testing.T) {
		middleware := createCORSMiddleware(false, "https://example.com", logger)
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithoutOrigins_ReturnsNil", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "", logger)
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithOrigins_AllowsConfiguredOrigin", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "https://example.com", logger)
		assert.NotNil(t, middleware)

		router := gin.New()
		router.Use(middleware)
		router.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("EnabledWithOrigins_RejectsUnknownOrigin", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "https://example.com", logger)
		assert.NotNil(t, middleware)

		router := gin.New()
		router.Use(middleware)
		router.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
		{
			name:     "Single",
			input:    "https://example.com",
			expected: []string{"https://example.com"},
		},
		{
			name:     "MultipleWithWhitespace",
			input:    " https://a.example.com , https://b.example.com ",
			expected: []string{"https://a.example.com", "https://b.example.com"},
		},
		{
			name:     "SkipsEmptyEntries",
			input:    "https://example.com,,",
			expected: []string{"https://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}
