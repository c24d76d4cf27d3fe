package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kidscience/card-service/internal/model"
)

// ProviderStats summarizes outbound call volume for one provider.
type ProviderStats struct {
	Provider  string `db:"provider" json:"provider"`
	Total     int64  `db:"total" json:"total"`
	Succeeded int64  `db:"succeeded" json:"succeeded"`
}

// ProviderCallRepository records and summarizes outbound LLM calls.
// Go interfaces are implicit — any struct with these methods satisfies it,
// which keeps the service testable with an in-memory fake.
type ProviderCallRepository interface {
	Create(ctx context.Context, call *model.ProviderCall) error
	Count(ctx context.Context) (int64, error)
	StatsByProvider(ctx context.Context) ([]ProviderStats, error)
}

// sqliteProviderCallRepository is the SQLite implementation.
// The struct is unexported — only the interface is public.
type sqliteProviderCallRepository struct {
	db *sqlx.DB
}

// NewProviderCallRepository creates a SQLite-backed ProviderCallRepository.
func NewProviderCallRepository(db *sqlx.DB) ProviderCallRepository {
	return &sqliteProviderCallRepository{db: db}
}

func (r *sqliteProviderCallRepository) Create(ctx context.Context, call *model.ProviderCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO provider_calls (provider, model, kind, success, duration_ms)
		VALUES (:provider, :model, :kind, :success, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating provider call: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteProviderCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM provider_calls")
	if err != nil {
		return 0, fmt.Errorf("counting provider calls: %w", err)
	}
	return count, nil
}

func (r *sqliteProviderCallRepository) StatsByProvider(ctx context.Context) ([]ProviderStats, error) {
	var stats []ProviderStats
	err := r.db.SelectContext(ctx, &stats, `
		SELECT provider,
		       COUNT(*) AS total,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) AS succeeded
		FROM provider_calls
		GROUP BY provider
		ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("querying provider stats: %w", err)
	}
	return stats, nil
}
