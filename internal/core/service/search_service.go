package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
	"github.com/partlens/recognition-api/internal/metrics"
)

type searchService struct {
	backend ports.Searcher
	log     zerolog.Logger
}

// NewSearchService returns the search gateway. Every call reaches the backend;
// nothing is cached.
func NewSearchService(backend ports.Searcher, log zerolog.Logger) ports.SearchService {
	return &searchService{backend: backend, log: log}
}

func (s *searchService) Search(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
	if _, _, err := detectImage(image.Data); err != nil {
		return nil, err
	}

	results, err := s.backend.Search(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	for i := range results {
		results[i].Confidence = clampConfidence(results[i].Confidence)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	metrics.SearchResultsCount.Observe(float64(len(results)))
	s.log.Debug().Str("file", image.Name).Int("matches", len(results)).Msg("search completed")

	return results, nil
}

func clampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
