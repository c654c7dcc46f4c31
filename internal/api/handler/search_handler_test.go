package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type stubSearchService struct {
	searchFn func(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error)
}

func (s *stubSearchService) Search(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
	return s.searchFn(ctx, image)
}

func TestSearchHandler_Search(t *testing.T) {
	stub := &stubSearchService{
		searchFn: func(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
			if image.Name != "query.png" || len(image.Data) != len(pngBytes) {
				t.Fatalf("unexpected image: %s (%d bytes)", image.Name, len(image.Data))
			}
			return []domain.SearchResult{
				{SKU: "SP-1", Name: "Bolt", Confidence: 0.92},
				{SKU: "SP-2", Name: "Nut", Confidence: 0.41},
			}, nil
		},
	}

	c, rec := multipartContext(t, newEcho(), "/api/search", "image", "query.png", pngBytes, nil)
	if err := NewSearchHandler(stub).Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	results, ok := decodeBody(t, rec)["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if first := results[0].(map[string]any); first["sku"] != "SP-1" || first["confidence"] != 0.92 {
		t.Fatalf("unexpected first result: %v", first)
	}
}

func TestSearchHandler_Search_NoMatchesIsEmptyArray(t *testing.T) {
	stub := &stubSearchService{
		searchFn: func(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
			return nil, nil
		},
	}

	c, rec := multipartContext(t, newEcho(), "/api/search", "file", "q.png", pngBytes, nil)
	if err := NewSearchHandler(stub).Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if results, ok := decodeBody(t, rec)["results"].([]any); !ok || len(results) != 0 {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestSearchHandler_Search_Errors(t *testing.T) {
	stub := &stubSearchService{
		searchFn: func(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
			return nil, fmt.Errorf("search: %w", domain.ErrUpstream)
		},
	}
	handler := NewSearchHandler(stub)

	c, _ := multipartContext(t, newEcho(), "/api/search", "", "", nil, map[string]string{"note": "no file"})
	if err := handler.Search(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	c, _ = multipartContext(t, newEcho(), "/api/search", "image", "q.png", pngBytes, nil)
	if err := handler.Search(c); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
