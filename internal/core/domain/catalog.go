package domain

import (
	"errors"
	"time"
)

// MaxImageSize is the largest image accepted for search, upload or feedback.
const MaxImageSize = 10 << 20

var (
	// ErrValidation marks a request missing a required field or carrying an
	// unusable value. Wrap it with the field detail.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream marks an unreachable or misbehaving external service.
	ErrUpstream = errors.New("upstream service error")
)

// SkuCode is a catalog entry owned by the external warehouse.
type SkuCode struct {
	Code        string `json:"label"`
	Description string `json:"description,omitempty"`
}

// DatasetStats holds aggregate counts over the reference image dataset.
type DatasetStats struct {
	TotalCodes  int64 `json:"totalCodes"`
	TotalImages int64 `json:"totalImages"`
}

// SearchResult is a single ranked match produced by the similarity service.
type SearchResult struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Upload records a reference image forwarded to the classification service.
type Upload struct {
	ID         string    `json:"id"`
	SKU        string    `json:"skuCode"`
	Username   string    `json:"username"`
	FileName   string    `json:"fileName"`
	Size       int64     `json:"size"`
	UpstreamID string    `json:"upstreamId,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}
