package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"countertop_quote_backend/internal/countertops/repository"
	"countertop_quote_backend/internal/countertops/service"
	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct {
	items      []repository.Countertop
	lastParams repository.ListParams
}

func (r *stubRepo) List(ctx context.Context, params repository.ListParams) ([]repository.Countertop, int, error) {
	r.lastParams = params
	end := params.Offset + params.Limit
	if end > len(r.items) {
		end = len(r.items)
	}
	if params.Offset >= len(r.items) {
		return nil, len(r.items), nil
	}
	return r.items[params.Offset:end], len(r.items), nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Countertop, error) {
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return repository.Countertop{}, apperr.NotFound("countertop not found")
}

func (r *stubRepo) ReplaceAll(ctx context.Context, items []repository.Countertop) (int64, error) {
	r.items = items
	return int64(len(items)), nil
}

func seededRepo(n int) *stubRepo {
	repo := &stubRepo{}
	for i := 0; i < n; i++ {
		repo.items = append(repo.items, repository.Countertop{
			ID:          uuid.New(),
			ProductName: "Calacatta Gold",
			Material:    "Quartz",
			Brand:       "Caesarstone",
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return repo
}

func newTestRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(service.New(repo, logger.Nop()), validator.New())
	engine := gin.New()
	engine.GET("/api/countertops", h.List)
	engine.GET("/api/countertops/:id", h.Get)
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestList_BindsFiltersAndPaging(t *testing.T) {
	repo := seededRepo(5)
	rec := get(newTestRouter(repo), "/api/countertops?material=%20Quartz%20&brand=Caesarstone&color=white&search=gold&page=2&pageSize=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := repository.ListParams{Material: "Quartz", Brand: "Caesarstone", Color: "white", Search: "gold", Offset: 2, Limit: 2}
	if repo.lastParams != want {
		t.Fatalf("expected params %+v, got %+v", want, repo.lastParams)
	}

	var body struct {
		Items []struct {
			ID          uuid.UUID `json:"id"`
			ProductName string    `json:"productName"`
		} `json:"items"`
		Total      int `json:"total"`
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 || body.Total != 5 || body.Page != 2 || body.PageSize != 2 || body.TotalPages != 3 {
		t.Fatalf("unexpected page %+v", body)
	}
	if body.Items[0].ID != repo.items[2].ID {
		t.Fatalf("expected third item first on page 2")
	}
}

func TestList_DefaultsWithoutQuery(t *testing.T) {
	repo := seededRepo(1)
	rec := get(newTestRouter(repo), "/api/countertops")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.lastParams.Offset != 0 || repo.lastParams.Limit != 20 {
		t.Fatalf("expected default paging, got %+v", repo.lastParams)
	}
}

func TestList_RejectsBadQuery(t *testing.T) {
	engine := newTestRouter(seededRepo(1))
	for _, query := range []string{"?page=abc", "?page=0", "?pageSize=101", "?pageSize=-1"} {
		if rec := get(engine, "/api/countertops"+query); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, rec.Code)
		}
	}
}

func TestGet(t *testing.T) {
	repo := seededRepo(2)
	engine := newTestRouter(repo)

	rec := get(engine, "/api/countertops/"+repo.items[1].ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		ID       uuid.UUID `json:"id"`
		Material string    `json:"material"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != repo.items[1].ID || body.Material != "Quartz" {
		t.Fatalf("unexpected countertop %+v", body)
	}

	if rec := get(engine, "/api/countertops/not-a-uuid"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
	if rec := get(engine, "/api/countertops/"+uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}
