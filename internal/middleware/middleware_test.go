package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testOrigin = "https://dentclinicai.com"

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestObservabilityMiddleware_WritesAccessLog(t *testing.T) {
	dir := t.TempDir()
	sink := audit.New(dir, audit.WithClock(func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	}))

	router := gin.New()
	router.Use(ObservabilityMiddleware(sink))
	router.GET("/api/facts", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/facts?token=abc&lang=en", http.NoBody)
	req.RemoteAddr = "198.51.100.4:4000"
	serve(router, req)

	line := readFile(t, filepath.Join(dir, audit.AccessLog))
	assert.Regexp(t,
		`^2025-03-14T09:26:53\.589Z GET /api/facts\?lang=en&token=%5BREDACTED%5D 200 \d+ms 198\.51\.100\.4\n$`, line)
	assert.NotContains(t, line, "abc")
}

func TestRedactedURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/api/qa", "/api/qa"},
		{"/api/qa?x=1", "/api/qa?x=1"},
		{"/api/qa?Secret=s&b=2", "/api/qa?Secret=%5BREDACTED%5D&b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, RedactedURL(u))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(2, []string{"127.0.0.1"}).Middleware())
	router.GET("/api/qa", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/qa", http.NoBody)
		req.RemoteAddr = ip + ":1234"
		return serve(router, req)
	}

	assert.Equal(t, http.StatusOK, request("203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, request("203.0.113.1").Code)

	w := request("203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.JSONEq(t,
		`{"ok":false,"error":{"code":"RATE_LIMIT_EXCEEDED","message":"Too many requests, please try again later"}}`,
		w.Body.String())

	// Other clients have their own budget
	assert.Equal(t, http.StatusOK, request("203.0.113.2").Code)

	// Allowlisted clients are never limited
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, request("127.0.0.1").Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(testOrigin, false))
	router.GET("/api/facts", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/contact", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(method, path, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, http.NoBody)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
		return serve(router, req)
	}

	t.Run("public endpoint from any origin", func(t *testing.T) {
		w := request(http.MethodGet, "/api/facts", "https://elsewhere.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("contact from site origin", func(t *testing.T) {
		w := request(http.MethodPost, "/api/contact", testOrigin)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("contact from other origin", func(t *testing.T) {
		w := request(http.MethodPost, "/api/contact", "https://elsewhere.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("contact preflight from site origin", func(t *testing.T) {
		w := request(http.MethodOptions, "/api/contact", testOrigin)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("server to server without origin", func(t *testing.T) {
		w := request(http.MethodPost, "/api/contact", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("localhost rejected outside development", func(t *testing.T) {
		w := request(http.MethodPost, "/api/contact", "http://localhost:5173")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCORSMiddleware_AllowLocalhost(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(testOrigin, true))
	router.POST("/api/roi", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin     string
		wantStatus int
	}{
		{"http://localhost:5173", http.StatusOK},
		{"http://127.0.0.1:3000", http.StatusOK},
		{testOrigin, http.StatusOK},
		{"https://localhost.evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/roi", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			assert.Equal(t, tt.wantStatus, serve(router, req).Code)
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, isPublicPath("/api/answer"))
	assert.True(t, isPublicPath("/public/og.png"))
	assert.False(t, isPublicPath("/api/answers"))
	assert.False(t, isPublicPath("/api/contact"))
	assert.False(t, isPublicPath("/public"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(true))
	router.GET("/api/qa", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=3600")
		c.Status(http.StatusOK)
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/qa", http.NoBody))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
}

func TestBodySizeLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(BodySizeLimitMiddleware(8))
	router.POST("/api/roi", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := serve(router, httptest.NewRequest(http.MethodPost, "/api/roi", strings.NewReader("12345678")))
	assert.Equal(t, http.StatusOK, small.Code)

	large := serve(router, httptest.NewRequest(http.MethodPost, "/api/roi", strings.NewReader("123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	dir := t.TempDir()
	sink := audit.New(dir)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(sink))
	router.POST("/api/contact", func(c *gin.Context) {
		_ = c.Error(apperrors.InternalError("lost", errors.New("boom"))) //nolint:errcheck
	})
	router.POST("/api/roi", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrValidation) //nolint:errcheck
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidation, models.MessageValidation))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/contact?email=jane@example.com", http.NoBody)
	req.RemoteAddr = "198.51.100.4:4000"
	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())

	errorLog := readFile(t, filepath.Join(dir, audit.ErrorLog))
	assert.Contains(t, errorLog, `"method":"POST"`)
	assert.Contains(t, errorLog, `"ip":"198.51.100.4"`)
	assert.NotContains(t, errorLog, "jane@example.com")

	// A handler that already responded is left alone
	w = serve(router, httptest.NewRequest(http.MethodPost, "/api/roi", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, strings.Count(readFile(t, filepath.Join(dir, audit.ErrorLog)), "\n"))
}

func TestRecoveryMiddleware(t *testing.T) {
	dir := t.TempDir()
	sink := audit.New(dir)

	gin.DefaultErrorWriter = io.Discard
	router := gin.New()
	router.Use(RecoveryMiddleware(sink))
	router.GET("/api/qa", func(c *gin.Context) { panic("nil map write") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/qa", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())

	errorLog := readFile(t, filepath.Join(dir, audit.ErrorLog))
	assert.Contains(t, errorLog, "nil map write")
	assert.Contains(t, errorLog, `"url":"/api/qa"`)
	assert.True(t, bytes.HasSuffix([]byte(errorLog), []byte("\n")))
}

func TestStack_PanicStillWritesAccessLog(t *testing.T) {
	dir := t.TempDir()
	sink := audit.New(dir)

	gin.DefaultErrorWriter = io.Discard
	router := gin.New()
	router.Use(Stack(StackConfig{ServiceName: "test", SiteOrigin: testOrigin, RequestsPerMinute: 60}, sink)...)
	router.GET("/api/facts", func(c *gin.Context) { panic("facts unavailable") })

	req := httptest.NewRequest(http.MethodGet, "/api/facts", http.NoBody)
	req.RemoteAddr = "198.51.100.4:4000"
	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Regexp(t, `^\S+ GET /api/facts 500 \d+ms 198\.51\.100\.4\n$`, readFile(t, filepath.Join(dir, audit.AccessLog)))
	assert.Contains(t, readFile(t, filepath.Join(dir, audit.ErrorLog)), "facts unavailable")
}
