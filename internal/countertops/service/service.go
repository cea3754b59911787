// Package service provides countertop catalog browsing and CSV import.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"countertop_quote_backend/internal/countertops/repository"
	"countertop_quote_backend/internal/countertops/transport"
	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
)

// importColumns is the minimum row width of the scraped catalog export:
// scene image, close-up image, product name, material, brand, veining,
// primary color, secondary color.
const importColumns = 8

// Service provides countertop catalog operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

// New creates a countertop service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log, now: time.Now}
}

// List returns one page of countertops.
func (s *Service) List(ctx context.Context, req transport.ListCountertopsRequest) (transport.CountertopListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{
		Material: strings.TrimSpace(req.Material),
		Brand:    strings.TrimSpace(req.Brand),
		Color:    strings.TrimSpace(req.Color),
		Search:   strings.TrimSpace(req.Search),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.CountertopListResponse{}, err
	}

	resp := transport.CountertopListResponse{
		Items:    make([]transport.CountertopResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	if total > 0 {
		resp.TotalPages = (total + pageSize - 1) / pageSize
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// Get returns one countertop.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.CountertopResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CountertopResponse{}, err
	}
	return toResponse(item), nil
}

// ImportCSV replaces the catalog with the rows of r. The first row is a
// header. Rows that are too short or have no product name are skipped.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (transport.ImportResult, error) {
	items, skipped, err := ParseCatalogCSV(r, s.now())
	if err != nil {
		return transport.ImportResult{}, err
	}
	if len(items) == 0 {
		return transport.ImportResult{Skipped: skipped}, apperr.BadRequest("catalog file has no usable rows")
	}

	imported, err := s.repo.ReplaceAll(ctx, items)
	if err != nil {
		s.log.DatabaseError("countertops.import", err)
		return transport.ImportResult{}, err
	}

	s.log.Info("countertop catalog imported", "imported", imported, "skipped", skipped)
	return transport.ImportResult{Imported: imported, Skipped: skipped}, nil
}

// ParseCatalogCSV reads the scraped catalog export.
func ParseCatalogCSV(r io.Reader, now time.Time) ([]repository.Countertop, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, apperr.BadRequest("catalog file is empty")
		}
		return nil, 0, apperr.Wrap(apperr.KindBadRequest, "catalog file is not valid CSV", err)
	}

	var items []repository.Countertop
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.KindBadRequest, fmt.Sprintf("catalog file is not valid CSV near row %d", len(items)+skipped+2), err)
		}
		if len(row) < importColumns || strings.TrimSpace(row[2]) == "" {
			skipped++
			continue
		}

		items = append(items, repository.Countertop{
			ID:              uuid.New(),
			ProductName:     strings.TrimSpace(row[2]),
			Material:        strings.TrimSpace(row[3]),
			Brand:           strings.TrimSpace(row[4]),
			Veining:         strings.TrimSpace(row[5]),
			PrimaryColor:    strings.TrimSpace(row[6]),
			SecondaryColor:  strings.TrimSpace(row[7]),
			SceneImageURL:   optionalURL(row[0]),
			CloseupImageURL: optionalURL(row[1]),
			CreatedAt:       now,
		})
	}
	return items, skipped, nil
}

func optionalURL(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toResponse(c repository.Countertop) transport.CountertopResponse {
	return transport.CountertopResponse{
		ID:              c.ID,
		ProductName:     c.ProductName,
		Material:        c.Material,
		Brand:           c.Brand,
		Veining:         c.Veining,
		PrimaryColor:    c.PrimaryColor,
		SecondaryColor:  c.SecondaryColor,
		SceneImageURL:   c.SceneImageURL,
		CloseupImageURL: c.CloseupImageURL,
		CreatedAt:       c.CreatedAt,
	}
}
