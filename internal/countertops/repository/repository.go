package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"countertop_quote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const countertopNotFoundMessage = "countertop not found"

const selectColumns = `id, product_name, material, brand, veining, primary_color, secondary_color,
	scene_image_url, closeup_image_url, created_at`

// Repo implements Repository on a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new countertop repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List returns one page of countertops and the total match count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Countertop, int, error) {
	var whereClauses []string
	var args []interface{}
	argIdx := 1

	if params.Material != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(material) = lower($%d)", argIdx))
		args = append(args, params.Material)
		argIdx++
	}
	if params.Brand != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(brand) = lower($%d)", argIdx))
		args = append(args, params.Brand)
		argIdx++
	}
	if params.Color != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(lower(primary_color) = lower($%d) OR lower(secondary_color) = lower($%d))", argIdx, argIdx))
		args = append(args, params.Color)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(product_name ILIKE $%d OR material ILIKE $%d OR brand ILIKE $%d OR primary_color ILIKE $%d OR secondary_color ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := "TRUE"
	if len(whereClauses) > 0 {
		whereClause = strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM countertops WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count countertops: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM countertops
		WHERE %s
		ORDER BY product_name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, selectColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list countertops: %w", err)
	}
	defer rows.Close()

	items := make([]Countertop, 0)
	for rows.Next() {
		item, err := scanCountertop(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan countertop: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate countertops: %w", rows.Err())
	}
	return items, total, nil
}

// GetByID loads one countertop.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Countertop, error) {
	query := fmt.Sprintf("SELECT %s FROM countertops WHERE id = $1", selectColumns)
	item, err := scanCountertop(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Countertop{}, apperr.NotFound(countertopNotFoundMessage)
		}
		return Countertop{}, fmt.Errorf("get countertop by id: %w", err)
	}
	return item, nil
}

// ReplaceAll deletes every row and bulk-loads items with COPY.
func (r *Repo) ReplaceAll(ctx context.Context, items []Countertop) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin countertop import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM countertops"); err != nil {
		return 0, fmt.Errorf("clear countertops: %w", err)
	}

	columns := []string{
		"id", "product_name", "material", "brand", "veining", "primary_color", "secondary_color",
		"scene_image_url", "closeup_image_url", "created_at",
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"countertops"}, columns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{
				it.ID, it.ProductName, it.Material, it.Brand, it.Veining, it.PrimaryColor, it.SecondaryColor,
				it.SceneImageURL, it.CloseupImageURL, it.CreatedAt,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy countertops: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit countertop import: %w", err)
	}
	return copied, nil
}

func scanCountertop(row pgx.Row) (Countertop, error) {
	var c Countertop
	err := row.Scan(
		&c.ID, &c.ProductName, &c.Material, &c.Brand, &c.Veining, &c.PrimaryColor, &c.SecondaryColor,
		&c.SceneImageURL, &c.CloseupImageURL, &c.CreatedAt,
	)
	return c, err
}
