package transport

import (
	"time"

	"github.com/google/uuid"
)

type ListCountertopsRequest struct {
	Material string `form:"material" validate:"max=100"`
	Brand    string `form:"brand" validate:"max=100"`
	Color    string `form:"color" validate:"max=100"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CountertopResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductName     string    `json:"productName"`
	Material        string    `json:"material"`
	Brand           string    `json:"brand"`
	Veining         string    `json:"veining"`
	PrimaryColor    string    `json:"primaryColor"`
	SecondaryColor  string    `json:"secondaryColor"`
	SceneImageURL   *string   `json:"sceneImageUrl,omitempty"`
	CloseupImageURL *string   `json:"closeupImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CountertopListResponse struct {
	Items      []CountertopResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// ImportResult summarises a catalog import.
type ImportResult struct {
	Imported int64 `json:"imported"`
	Skipped  int   `json:"skipped"`
}
