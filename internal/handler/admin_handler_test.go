package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/storage"
)

type stubCallRepo struct {
	total int64
	stats []storage.ProviderStats
	err   error
}

func (s *stubCallRepo) Create(ctx context.Context, call *model.ProviderCall) error { return nil }
func (s *stubCallRepo) Count(ctx context.Context) (int64, error)                   { return s.total, s.err }
func (s *stubCallRepo) StatsByProvider(ctx context.Context) ([]storage.ProviderStats, error) {
	return s.stats, s.err
}

func newAdminRouter(repo storage.ProviderCallRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(repo, zap.NewNop())
	r := gin.New()
	r.GET("/api/admin/stats", h.Stats)
	return r
}

func TestStats_ReportsProviderCounts(t *testing.T) {
	repo := &stubCallRepo{
		total: 7,
		stats: []storage.ProviderStats{
			{Provider: "gemini", Total: 3, Succeeded: 3},
			{Provider: "glm", Total: 4, Succeeded: 2},
		},
	}
	r := newAdminRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success    bool                    `json:"success"`
		TotalCalls int64                   `json:"total_calls"`
		Providers  []storage.ProviderStats `json:"providers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.TotalCalls != 7 {
		t.Errorf("total_calls = %d, want 7", resp.TotalCalls)
	}
	if len(resp.Providers) != 2 || resp.Providers[0].Provider != "gemini" {
		t.Errorf("providers = %+v", resp.Providers)
	}
}

func TestStats_RepositoryFailure(t *testing.T) {
	r := newAdminRouter(&stubCallRepo{err: errors.New("database is locked")})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
