package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type stubSearcher struct {
	results []domain.SearchResult
	err     error
	calls   int
}

func (s *stubSearcher) Search(context.Context, ports.ImageFile) ([]domain.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.SearchResult(nil), s.results...), nil
}

func TestSearchService_Search_SortsAndClamps(t *testing.T) {
	backend := &stubSearcher{results: []domain.SearchResult{
		{SKU: "SP-1", Confidence: 0.42},
		{SKU: "SP-2", Confidence: 1.7},
		{SKU: "SP-3", Confidence: -0.2},
		{SKU: "SP-4", Confidence: math.NaN()},
		{SKU: "SP-5", Confidence: 0.42},
	}}
	svc := NewSearchService(backend, zerolog.Nop())

	results, err := svc.Search(context.Background(), ports.ImageFile{Name: "q.png", Data: pngImage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []string{"SP-2", "SP-1", "SP-5", "SP-3", "SP-4"}
	for i, sku := range wantOrder {
		if results[i].SKU != sku {
			t.Fatalf("results[%d] = %s, want %s", i, results[i].SKU, sku)
		}
		if c := results[i].Confidence; c < 0 || c > 1 {
			t.Fatalf("confidence out of range: %v", c)
		}
	}
}

func TestSearchService_Search_NoMatches(t *testing.T) {
	svc := NewSearchService(&stubSearcher{}, zerolog.Nop())

	results, err := svc.Search(context.Background(), ports.ImageFile{Data: jpegImage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

func TestSearchService_Search_RejectsNonImage(t *testing.T) {
	backend := &stubSearcher{}
	svc := NewSearchService(backend, zerolog.Nop())

	if _, err := svc.Search(context.Background(), ports.ImageFile{Data: textFile}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend must not be called for invalid input")
	}
}

func TestSearchService_Search_UpstreamError(t *testing.T) {
	svc := NewSearchService(&stubSearcher{err: domain.ErrUpstream}, zerolog.Nop())

	if _, err := svc.Search(context.Background(), ports.ImageFile{Data: pngImage}); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
