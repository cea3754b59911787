package service

import (
	"context"
	"strings"
	"testing"

	"countertop_quote_backend/internal/countertops/repository"
	"countertop_quote_backend/internal/countertops/transport"
	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	items      []repository.Countertop
	lastParams repository.ListParams
	replaced   []repository.Countertop
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListParams) ([]repository.Countertop, int, error) {
	f.lastParams = params
	return f.items, len(f.items), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Countertop, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return repository.Countertop{}, apperr.NotFound("countertop not found")
}

func (f *fakeRepo) ReplaceAll(ctx context.Context, items []repository.Countertop) (int64, error) {
	f.replaced = items
	return int64(len(items)), nil
}

const sampleCSV = `scene,closeup,name,material,brand,veining,primary,secondary
https://img.example/a.jpg,https://img.example/a-close.jpg,Calacatta Laza,Quartz,MSI Surfaces,Bold,White,Gold
,,Black Galaxy,Granite,Generic,None,Black,
short,row
https://img.example/c.jpg,,  ,Marble,Generic,Soft,White,Grey
`

func TestImportCSV_SkipsShortAndNamelessRows(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.Nop())

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 2 {
		t.Fatalf("expected 2 imported / 2 skipped, got %+v", result)
	}

	first := repo.replaced[0]
	if first.ProductName != "Calacatta Laza" || first.Material != "Quartz" || first.SecondaryColor != "Gold" {
		t.Fatalf("unexpected first row %+v", first)
	}
	if first.SceneImageURL == nil || *first.SceneImageURL != "https://img.example/a.jpg" {
		t.Fatalf("expected scene image url, got %v", first.SceneImageURL)
	}
	if repo.replaced[1].SceneImageURL != nil || repo.replaced[1].CloseupImageURL != nil {
		t.Fatalf("blank image urls should be nil")
	}
}

func TestImportCSV_Empty(t *testing.T) {
	svc := New(&fakeRepo{}, logger.Nop())

	if _, err := svc.ImportCSV(context.Background(), strings.NewReader("")); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty file, got %v", err)
	}
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader("a,b,c\nx,y\n")); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request without usable rows, got %v", err)
	}
}

func TestList_ClampsPaging(t *testing.T) {
	repo := &fakeRepo{items: []repository.Countertop{{ID: uuid.New(), ProductName: "Calacatta Laza"}}}
	svc := New(repo, logger.Nop())

	resp, err := svc.List(context.Background(), transport.ListCountertopsRequest{Page: 0, PageSize: 500, Material: " Quartz "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 100 || resp.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", resp)
	}
	if repo.lastParams.Limit != 100 || repo.lastParams.Offset != 0 || repo.lastParams.Material != "Quartz" {
		t.Fatalf("unexpected repo params %+v", repo.lastParams)
	}

	if _, err := svc.List(context.Background(), transport.ListCountertopsRequest{Page: 3, PageSize: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Offset != 20 {
		t.Fatalf("expected offset 20, got %d", repo.lastParams.Offset)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := New(&fakeRepo{}, logger.Nop())
	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
