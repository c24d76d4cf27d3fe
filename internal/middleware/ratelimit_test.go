package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/ratelimit"
)

func newRateLimitRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := ratelimit.NewMemoryStore(limit, window)
	r.Use(RateLimit(store, zap.NewNop()))
	r.POST("/api/generate-card", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doPost(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-card", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	r := newRateLimitRouter(10, time.Minute)

	w := doPost(r, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("X-RateLimit-Remaining = %q, want 9", got)
	}
	if w.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing")
	}
}

func TestRateLimit_RejectsAfterLimit(t *testing.T) {
	r := newRateLimitRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if w := doPost(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := doPost(r, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["error"] != "请求过于频繁，请稍后再试" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestRateLimit_KeysByForwardedClient(t *testing.T) {
	r := newRateLimitRouter(1, time.Minute)

	if w := doPost(r, map[string]string{"X-Forwarded-For": "1.2.3.4"}); w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", w.Code)
	}
	if w := doPost(r, map[string]string{"X-Forwarded-For": "1.2.3.4"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client repeat: status = %d, want 429", w.Code)
	}
	// A different forwarded client has its own budget.
	if w := doPost(r, map[string]string{"X-Forwarded-For": "5.6.7.8"}); w.Code != http.StatusOK {
		t.Fatalf("second client: status = %d, want 200", w.Code)
	}
}

func TestClientKey_HeaderPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded-for wins", map[string]string{"X-Forwarded-For": "1.2.3.4, 9.9.9.9", "X-Real-IP": "5.6.7.8"}, "1.2.3.4"},
		{"real-ip fallback", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := clientKey(c); got != tt.want {
				t.Errorf("clientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
