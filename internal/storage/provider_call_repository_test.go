package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kidscience/card-service/internal/model"
)

// setupTestRepo creates a temporary SQLite database for testing.
// t.TempDir() is cleaned up automatically after the test — no manual teardown.
func setupTestRepo(t *testing.T) ProviderCallRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewProviderCallRepository(db)
}

func TestProviderCallRepository_CreateAndCount(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	duration := int64(850)
	call := &model.ProviderCall{
		Provider:   "glm",
		Model:      "glm-4-flash",
		Kind:       model.KindCard,
		Success:    true,
		DurationMs: &duration,
	}
	if err := repo.Create(ctx, call); err != nil {
		t.Fatalf("creating call: %v", err)
	}
	if call.ID == 0 {
		t.Error("expected insert to backfill the ID")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting calls: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 call, got %d", count)
	}
}

func TestProviderCallRepository_StatsByProvider(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	calls := []*model.ProviderCall{
		{Provider: "glm", Model: "glm-4-flash", Kind: model.KindCard, Success: true},
		{Provider: "glm", Model: "glm-4-flash", Kind: model.KindCard, Success: false},
		{Provider: "gemini", Model: "gemini-2.5-flash", Kind: model.KindCard, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash-image-preview", Kind: model.KindImage, Success: true},
	}
	for _, c := range calls {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("creating call: %v", err)
		}
	}

	stats, err := repo.StatsByProvider(ctx)
	if err != nil {
		t.Fatalf("querying stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 providers, got %d", len(stats))
	}

	// Ordered by provider name: gemini before glm.
	if stats[0].Provider != "gemini" || stats[0].Total != 2 || stats[0].Succeeded != 2 {
		t.Errorf("unexpected gemini stats: %+v", stats[0])
	}
	if stats[1].Provider != "glm" || stats[1].Total != 2 || stats[1].Succeeded != 1 {
		t.Errorf("unexpected glm stats: %+v", stats[1])
	}
}
