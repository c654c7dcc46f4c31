package service

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/partlens/recognition-api/internal/core/domain"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/bmp", "image/webp"}

// detectImage sniffs the payload and returns its MIME type and canonical
// extension. Anything that is not a supported raster image is a validation
// error.
func detectImage(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if len(data) > domain.MaxImageSize {
		return "", "", fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, domain.MaxImageSize)
	}

	mt := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return allowed, mt.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("%w: unsupported image type %s", domain.ErrValidation, mt.String())
}
