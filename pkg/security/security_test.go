package security

import (
	"net/http"
	"net/http/httptest"
	"onlinecourse_backend/internal/config"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"http://ok.example"}}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://ok.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ok.example" {
		t.Fatalf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{MaxRequests: 2, WindowMinutes: 1})
	now := time.Now()

	if !l.allow("1.1.1.1", now) || !l.allow("1.1.1.1", now) {
		t.Fatalf("first two requests should pass")
	}
	if l.allow("1.1.1.1", now) {
		t.Fatalf("third request should be limited")
	}
	if !l.allow("2.2.2.2", now) {
		t.Fatalf("other clients have their own bucket")
	}

	// 新速率为每 12 秒一个令牌，旧速率下 13 秒内无法恢复
	l.Update(config.RateLimitConfig{MaxRequests: 5, WindowMinutes: 1})
	if !l.allow("1.1.1.1", now.Add(13*time.Second)) {
		t.Fatalf("updated rate should refill the bucket")
	}

	l.Update(config.RateLimitConfig{})
	for i := 0; i < 100; i++ {
		if !l.allow("1.1.1.1", now) {
			t.Fatalf("disabled limiter should admit everything")
		}
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{MaxRequests: 10, WindowMinutes: 1})
	now := time.Now()
	l.allow("1.1.1.1", now)

	l.Sweep(now.Add(2 * time.Minute))
	if len(l.visitors) != 1 {
		t.Fatalf("recent visitor swept")
	}
	l.Sweep(now.Add(4 * time.Minute))
	if len(l.visitors) != 0 {
		t.Fatalf("stale visitor not swept")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{MaxRequests: 1, WindowMinutes: 1})
	r := newRouter(Secure(), l.Middleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("secure headers missing")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
}
