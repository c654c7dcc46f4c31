package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/partlens/recognition-api/internal/core/domain"
)

type stubCatalogService struct {
	codes    []domain.SkuCode
	stats    *domain.DatasetStats
	known    map[string]string
	err      error
	lastCode string
}

func (s *stubCatalogService) ListCodes(ctx context.Context) ([]domain.SkuCode, error) {
	return s.codes, s.err
}

func (s *stubCatalogService) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	return s.stats, s.err
}

func (s *stubCatalogService) ValidateCode(ctx context.Context, code string) (*domain.SkuCode, bool, error) {
	s.lastCode = code
	if s.err != nil {
		return nil, false, s.err
	}
	desc, ok := s.known[code]
	if !ok {
		return nil, false, nil
	}
	return &domain.SkuCode{Code: code, Description: desc}, true, nil
}

func TestCatalogHandler_Codes(t *testing.T) {
	stub := &stubCatalogService{codes: []domain.SkuCode{{Code: "SP-1", Description: "Bolt"}, {Code: "SP-2"}}}

	c, rec := jsonContext(newEcho(), http.MethodGet, "/api/codes", "")
	if err := NewCatalogHandler(stub).Codes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	codes, ok := decodeBody(t, rec)["codes"].([]any)
	if !ok || len(codes) != 2 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if first := codes[0].(map[string]any); first["label"] != "SP-1" || first["description"] != "Bolt" {
		t.Fatalf("unexpected first code: %v", first)
	}
}

func TestCatalogHandler_Codes_EmptyIsArray(t *testing.T) {
	c, rec := jsonContext(newEcho(), http.MethodGet, "/api/codes", "")
	if err := NewCatalogHandler(&stubCatalogService{}).Codes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if codes, ok := decodeBody(t, rec)["codes"].([]any); !ok || len(codes) != 0 {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestCatalogHandler_UpstreamError(t *testing.T) {
	stub := &stubCatalogService{err: fmt.Errorf("list codes: %w", domain.ErrUpstream)}

	c, _ := jsonContext(newEcho(), http.MethodGet, "/api/codes", "")
	if err := NewCatalogHandler(stub).Codes(c); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	c, _ = jsonContext(newEcho(), http.MethodGet, "/api/stats", "")
	if err := NewCatalogHandler(stub).Stats(c); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCatalogHandler_Stats(t *testing.T) {
	stub := &stubCatalogService{stats: &domain.DatasetStats{TotalCodes: 12, TotalImages: 340}}

	c, rec := jsonContext(newEcho(), http.MethodGet, "/api/stats", "")
	if err := NewCatalogHandler(stub).Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	stats := decodeBody(t, rec)["stats"].(map[string]any)
	if stats["totalCodes"] != float64(12) || stats["totalImages"] != float64(340) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestCatalogHandler_Validate(t *testing.T) {
	stub := &stubCatalogService{known: map[string]string{"SP-1": "Bolt"}}
	handler := NewCatalogHandler(stub)

	c, rec := jsonContext(newEcho(), http.MethodPost, "/api/validate", `{"sku_code":"SP-1"}`)
	if err := handler.Validate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["valid"] != true || resp["description"] != "Bolt" {
		t.Fatalf("unexpected response: %v", resp)
	}

	c, rec = jsonContext(newEcho(), http.MethodPost, "/api/validate", `{"sku_code":"SP-404"}`)
	if err := handler.Validate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["valid"] != false || resp["success"] != true {
		t.Fatalf("unexpected response: %v", resp)
	}

	c, _ = jsonContext(newEcho(), http.MethodPost, "/api/validate", `{}`)
	if err := handler.Validate(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
