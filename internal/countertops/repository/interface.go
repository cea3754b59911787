// Package repository stores the countertop product catalog in Postgres.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Countertop is one slab product with its imagery.
type Countertop struct {
	ID              uuid.UUID `db:"id"`
	ProductName     string    `db:"product_name"`
	Material        string    `db:"material"`
	Brand           string    `db:"brand"`
	Veining         string    `db:"veining"`
	PrimaryColor    string    `db:"primary_color"`
	SecondaryColor  string    `db:"secondary_color"`
	SceneImageURL   *string   `db:"scene_image_url"`
	CloseupImageURL *string   `db:"closeup_image_url"`
	CreatedAt       time.Time `db:"created_at"`
}

// ListParams filters the catalog. Material, Brand and Color match exactly
// (case-insensitive); Search is a substring match on name, material, brand
// and colors.
type ListParams struct {
	Material string
	Brand    string
	Color    string
	Search   string
	Offset   int
	Limit    int
}

// Repository defines countertop storage operations.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Countertop, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (Countertop, error)
	// ReplaceAll swaps the whole catalog in one transaction.
	ReplaceAll(ctx context.Context, items []Countertop) (int64, error)
}
