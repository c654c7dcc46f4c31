package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// UploadInput carries a reference image for a known SKU.
type UploadInput struct {
	Image    ImageFile
	SKU      string
	Username string
}

// UploadReceipt is the classification service's acknowledgement of an upload.
type UploadReceipt struct {
	ID          string
	SKU         string
	Description string
}

// ReferenceUploader forwards reference images to the classification service.
type ReferenceUploader interface {
	UploadImage(ctx context.Context, input UploadInput) (*UploadReceipt, error)
}

// UploadRepository records uploads for auditing.
type UploadRepository interface {
	Create(ctx context.Context, u *domain.Upload) error
}

// UploadService is the reference-image upload use case.
type UploadService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Upload, error)
}
