package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// ImageFile is an uploaded image as received from the client.
type ImageFile struct {
	Name string
	Data []byte
}

// Searcher runs a visual similarity search against some backend.
type Searcher interface {
	Search(ctx context.Context, image ImageFile) ([]domain.SearchResult, error)
}

// SearchService is the search gateway use case.
type SearchService interface {
	Search(ctx context.Context, image ImageFile) ([]domain.SearchResult, error)
}
