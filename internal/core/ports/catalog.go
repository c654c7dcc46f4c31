package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// CatalogSource is the external owner of SKU codes and dataset statistics.
type CatalogSource interface {
	ListCodes(ctx context.Context) ([]domain.SkuCode, error)
	Stats(ctx context.Context) (*domain.DatasetStats, error)
	// LookupCode returns the catalog entry for code, or nil when unknown.
	LookupCode(ctx context.Context, code string) (*domain.SkuCode, error)
}

// CodesCache stores the codes list for a bounded time. A miss returns
// (nil, false, nil).
type CodesCache interface {
	Get(ctx context.Context) ([]domain.SkuCode, bool, error)
	Set(ctx context.Context, codes []domain.SkuCode) error
}

// CatalogService exposes catalog lookups.
type CatalogService interface {
	ListCodes(ctx context.Context) ([]domain.SkuCode, error)
	Stats(ctx context.Context) (*domain.DatasetStats, error)
	ValidateCode(ctx context.Context, code string) (*domain.SkuCode, bool, error)
}
