package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
	"github.com/partlens/recognition-api/internal/metrics"
)

type catalogService struct {
	source ports.CatalogSource
	cache  ports.CodesCache // optional
	log    zerolog.Logger
}

// NewCatalogService returns a CatalogService over source. cache may be nil.
func NewCatalogService(source ports.CatalogSource, cache ports.CodesCache, log zerolog.Logger) ports.CatalogService {
	return &catalogService{source: source, cache: cache, log: log}
}

// ListCodes returns the distinct catalog codes sorted by code. Cache failures
// are logged and bypassed.
func (s *catalogService) ListCodes(ctx context.Context) ([]domain.SkuCode, error) {
	if s.cache != nil {
		codes, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.CodesCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Msg("codes cache read failed, querying source")
		case ok:
			metrics.CodesCacheTotal.WithLabelValues("hit").Inc()
			return codes, nil
		default:
			metrics.CodesCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	raw, err := s.source.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	codes := distinctCodes(raw)

	if s.cache != nil {
		if err := s.cache.Set(ctx, codes); err != nil {
			s.log.Warn().Err(err).Msg("codes cache write failed")
		}
	}
	return codes, nil
}

func (s *catalogService) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	stats, err := s.source.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset stats: %w", err)
	}
	if stats == nil {
		return &domain.DatasetStats{}, nil
	}
	return stats, nil
}

// ValidateCode reports whether code exists in the catalog.
func (s *catalogService) ValidateCode(ctx context.Context, code string) (*domain.SkuCode, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false, fmt.Errorf("%w: sku_code is required", domain.ErrValidation)
	}
	entry, err := s.source.LookupCode(ctx, code)
	if err != nil {
		return nil, false, fmt.Errorf("validate code: %w", err)
	}
	return entry, entry != nil, nil
}

// distinctCodes drops blank and repeated codes, keeping the first non-empty
// description seen for each code.
func distinctCodes(in []domain.SkuCode) []domain.SkuCode {
	idx := make(map[string]int, len(in))
	out := make([]domain.SkuCode, 0, len(in))
	for _, c := range in {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			continue
		}
		if i, seen := idx[code]; seen {
			if out[i].Description == "" {
				out[i].Description = c.Description
			}
			continue
		}
		idx[code] = len(out)
		out = append(out, domain.SkuCode{Code: code, Description: c.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
