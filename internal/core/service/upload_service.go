package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type uploadService struct {
	uploader ports.ReferenceUploader
	repo     ports.UploadRepository
	log      zerolog.Logger
}

// NewUploadService returns an UploadService that forwards reference images to
// the classification service and keeps an audit row per upload.
func NewUploadService(uploader ports.ReferenceUploader, repo ports.UploadRepository, log zerolog.Logger) ports.UploadService {
	return &uploadService{uploader: uploader, repo: repo, log: log}
}

func (s *uploadService) Upload(ctx context.Context, in ports.UploadInput) (*domain.Upload, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Username = strings.TrimSpace(in.Username)
	if in.SKU == "" {
		return nil, fmt.Errorf("%w: sku_code is required", domain.ErrValidation)
	}
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if _, _, err := detectImage(in.Image.Data); err != nil {
		return nil, err
	}

	receipt, err := s.uploader.UploadImage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	u := &domain.Upload{
		ID:         uuid.NewString(),
		SKU:        in.SKU,
		Username:   in.Username,
		FileName:   in.Image.Name,
		Size:       int64(len(in.Image.Data)),
		UpstreamID: receipt.ID,
		UploadedAt: time.Now().UTC(),
	}

	// The upstream already holds the image; an audit failure must not fail the upload.
	if err := s.repo.Create(ctx, u); err != nil {
		s.log.Warn().Err(err).Str("sku", u.SKU).Str("upstream_id", u.UpstreamID).Msg("failed to record upload audit")
	}

	s.log.Info().
		Str("sku", u.SKU).
		Str("username", u.Username).
		Int64("size", u.Size).
		Msg("reference image uploaded")

	return u, nil
}
