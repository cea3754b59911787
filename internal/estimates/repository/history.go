package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// HistoryRecord is one persisted estimate.
type HistoryRecord struct {
	ID              uuid.UUID       `db:"id"`
	Source          string          `db:"source"`
	MaterialKey     string          `db:"material_key"`
	MaterialMatched bool            `db:"material_matched"`
	AreaUnits       float64         `db:"area_units"`
	WasteStrategy   string          `db:"waste_strategy"`
	SlabCount       int             `db:"slab_count"`
	MaterialCost    decimal.Decimal `db:"material_cost"`
	FixtureCost     decimal.Decimal `db:"fixture_cost"`
	BacksplashCost  decimal.Decimal `db:"backsplash_cost"`
	LaborCost       decimal.Decimal `db:"labor_cost"`
	TotalCost       decimal.Decimal `db:"total_cost"`
	CatalogSource   string          `db:"catalog_source"`
	CreatedAt       time.Time       `db:"created_at"`
}

// HistoryRepository stores computed estimates in Postgres.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a history repository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Insert stores rec. A duplicate id is ignored so redelivered events are harmless.
func (r *HistoryRepository) Insert(ctx context.Context, rec HistoryRecord) error {
	query := `
		INSERT INTO estimate_history (
			id, source, material_key, material_matched, area_units, waste_strategy, slab_count,
			material_cost, fixture_cost, backsplash_cost, labor_cost, total_cost,
			catalog_source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Source, rec.MaterialKey, rec.MaterialMatched, rec.AreaUnits, rec.WasteStrategy, rec.SlabCount,
		rec.MaterialCost, rec.FixtureCost, rec.BacksplashCost, rec.LaborCost, rec.TotalCost,
		rec.CatalogSource, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert estimate history: %w", err)
	}
	return nil
}

// ListRecent returns the newest limit records.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	query := `
		SELECT id, source, material_key, material_matched, area_units, waste_strategy, slab_count,
			material_cost, fixture_cost, backsplash_cost, labor_cost, total_cost,
			catalog_source, created_at
		FROM estimate_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimate history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.Source, &rec.MaterialKey, &rec.MaterialMatched, &rec.AreaUnits, &rec.WasteStrategy, &rec.SlabCount,
			&rec.MaterialCost, &rec.FixtureCost, &rec.BacksplashCost, &rec.LaborCost, &rec.TotalCost,
			&rec.CatalogSource, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan estimate history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estimate history: %w", err)
	}
	return records, nil
}

// DeleteBefore removes records older than cutoff.
func (r *HistoryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM estimate_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete estimate history: %w", err)
	}
	return tag.RowsAffected(), nil
}
