package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/estimates/service"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubNarrator struct{}

func (stubNarrator) Write(ctx context.Context, doc narrative.PromptDocument) (string, error) {
	return "A tidy quartz kitchen.", nil
}

type recordingHistory struct {
	limits []int
}

func (r *recordingHistory) ListRecent(ctx context.Context, limit int) ([]repository.HistoryRecord, error) {
	r.limits = append(r.limits, limit)
	return []repository.HistoryRecord{{ID: uuid.New(), Source: "api", MaterialKey: "granite", SlabCount: 1}}, nil
}

func newTestRouter() *gin.Engine {
	return newTestRouterWith(nil)
}

func newTestRouterWith(history service.HistoryReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	provider := pricing.NewProvider(pricing.ProviderOptions{}, logger.Nop())
	svc := service.New(provider, domain.DefaultPolicy(), logger.Nop())
	svc.SetNarrator(stubNarrator{})
	if history != nil {
		svc.SetHistory(history)
	}

	engine := gin.New()
	New(svc, validator.New()).RegisterRoutes(engine.Group("/api/estimate"))
	NewPricingHandler(svc).RegisterRoutes(engine.Group("/api/pricing"))
	return engine
}

func post(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestEstimate_OK(t *testing.T) {
	rec := post(t, newTestRouter(), "/api/estimate", `{"sqft": 30, "color": "Calacatta Quartz", "edgeDetailTier": "standard", "jobType": "install"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Estimate struct {
			MaterialKey     string      `json:"materialKey"`
			MaterialMatched bool        `json:"materialMatched"`
			MaterialCost    json.Number `json:"materialCost"`
			LaborCost       json.Number `json:"laborCost"`
			TotalCost       json.Number `json:"totalCost"`
			SlabCount       int         `json:"slabCount"`
		} `json:"estimate"`
		Narrative       string `json:"narrative"`
		NarrativeStatus string `json:"narrativeStatus"`
	}
	dec := json.NewDecoder(rec.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Estimate.MaterialKey != "calacatta quartz" || !body.Estimate.MaterialMatched {
		t.Fatalf("unexpected material %+v", body.Estimate)
	}
	if body.Estimate.MaterialCost.String() != "1350.00" || body.Estimate.LaborCost.String() != "1755.00" || body.Estimate.TotalCost.String() != "3105.00" {
		t.Fatalf("unexpected costs %+v", body.Estimate)
	}
	if body.Estimate.SlabCount != 1 {
		t.Fatalf("expected 1 slab, got %d", body.Estimate.SlabCount)
	}
	if body.NarrativeStatus != narrative.StatusOK || body.Narrative == "" {
		t.Fatalf("unexpected narrative %q/%s", body.Narrative, body.NarrativeStatus)
	}
}

func TestEstimate_ZeroAreaIsBadRequest(t *testing.T) {
	rec := post(t, newTestRouter(), "/api/estimate", `{"areaUnits": 0, "materialKey": "granite"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Details) == 0 || body.Details[0].Field != "areaUnits" {
		t.Fatalf("expected areaUnits violation, got %s", rec.Body.String())
	}
}

func TestEstimate_NegativeQuantityIsBadRequest(t *testing.T) {
	rec := post(t, newTestRouter(), "/api/estimate", `{"areaUnits": 20, "fixtures": [{"kind": "sink", "quantity": -2}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEstimate_MalformedJSON(t *testing.T) {
	rec := post(t, newTestRouter(), "/api/estimate", `{"areaUnits": "lots"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEnqueueJob_UnavailableWithoutRedis(t *testing.T) {
	rec := post(t, newTestRouter(), "/api/estimate/jobs", `{"areaUnits": 20}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPricing_Get(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/pricing", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Source   string `json:"source"`
		Fallback bool   `json:"fallback"`
		Count    int    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Source != pricing.StaticSourceName || !body.Fallback || body.Count == 0 {
		t.Fatalf("unexpected pricing body %s", rec.Body.String())
	}
}

func TestListHistory_Limit(t *testing.T) {
	history := &recordingHistory{}
	engine := newTestRouterWith(history)

	tests := []struct {
		query string
		code  int
	}{
		{"", http.StatusOK},
		{"?limit=5", http.StatusOK},
		{"?limit=abc", http.StatusBadRequest},
		{"?limit=0", http.StatusBadRequest},
		{"?limit=500", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/estimate/history"+tt.query, nil))
		if rec.Code != tt.code {
			t.Fatalf("%q: expected %d, got %d: %s", tt.query, tt.code, rec.Code, rec.Body.String())
		}
	}

	if len(history.limits) != 2 || history.limits[0] != 20 || history.limits[1] != 5 {
		t.Fatalf("expected limits [20 5], got %v", history.limits)
	}
}

func TestListHistory_UnavailableWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/estimate/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
