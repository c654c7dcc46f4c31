package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
	"github.com/partlens/recognition-api/internal/metrics"
)

const (
	DefaultPendingLimit = 100
	MaxPendingLimit     = 500
)

type feedbackService struct {
	repo   ports.FeedbackRepository
	images ports.ImageStore
	log    zerolog.Logger
	now    func() time.Time
}

// NewFeedbackService returns a FeedbackService implementation. Images are
// persisted in the image store; the record keeps the object key.
func NewFeedbackService(repo ports.FeedbackRepository, images ports.ImageStore, log zerolog.Logger) ports.FeedbackService {
	return &feedbackService{
		repo:   repo,
		images: images,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the correction, stores the image and persists a pending record.
func (s *feedbackService) Submit(ctx context.Context, in ports.SubmitFeedbackInput) (*domain.Feedback, error) {
	correct := strings.TrimSpace(in.CorrectSKU)
	if correct == "" {
		return nil, fmt.Errorf("%w: correct_sku is required", domain.ErrValidation)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	contentType, ext, err := detectImage(in.Image)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := "feedback/" + id + ext
	if err := s.images.Put(ctx, key, in.Image, contentType); err != nil {
		return nil, fmt.Errorf("submit feedback: store image: %w", err)
	}

	f := &domain.Feedback{
		ID:           id,
		Username:     username,
		PredictedSKU: strings.TrimSpace(in.PredictedSKU),
		CorrectSKU:   correct,
		Image: domain.FeedbackImage{
			Key:         key,
			Name:        in.ImageName,
			Size:        int64(len(in.Image)),
			ContentType: contentType,
		},
		SubmittedAt: s.now(),
		Status:      domain.FeedbackPending,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		// The stored image is left behind; it is unreachable without a record.
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	metrics.FeedbackSubmittedTotal.Inc()
	s.log.Info().
		Str("feedback_id", f.ID).
		Str("username", f.Username).
		Str("predicted_sku", f.PredictedSKU).
		Str("correct_sku", f.CorrectSKU).
		Msg("feedback submitted")

	return f, nil
}

// ListPending returns pending records, newest first. The limit is clamped
// to [1, MaxPendingLimit] with DefaultPendingLimit for non-positive values.
func (s *feedbackService) ListPending(ctx context.Context, limit int) ([]*domain.Feedback, error) {
	switch {
	case limit <= 0:
		limit = DefaultPendingLimit
	case limit > MaxPendingLimit:
		limit = MaxPendingLimit
	}
	items, err := s.repo.ListByStatus(ctx, domain.FeedbackPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending feedback: %w", err)
	}
	return items, nil
}

func (s *feedbackService) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: feedbackId is required", domain.ErrValidation)
	}
	return s.repo.FindByID(ctx, id)
}

// Review moves a pending record to approved or rejected. Terminal records
// cannot be reviewed again.
func (s *feedbackService) Review(ctx context.Context, in ports.ReviewInput) (*domain.Feedback, error) {
	if strings.TrimSpace(in.FeedbackID) == "" {
		return nil, fmt.Errorf("%w: feedbackId is required", domain.ErrValidation)
	}
	adminName := strings.TrimSpace(in.AdminName)
	if adminName == "" {
		return nil, fmt.Errorf("%w: adminName is required", domain.ErrValidation)
	}

	f, err := s.repo.FindByID(ctx, in.FeedbackID)
	if err != nil {
		return nil, err
	}

	next := domain.ReviewOutcome(in.Approve)
	if f.Status.IsTerminal() {
		metrics.FeedbackReviewsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("review feedback: %w (already %s)", domain.ErrInvalidTransition, f.Status)
	}
	if !f.Status.CanTransitionTo(next) {
		metrics.FeedbackReviewsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("review feedback: %w (from %s to %s)", domain.ErrInvalidTransition, f.Status, next)
	}

	at := s.now()
	if err := s.repo.Transition(ctx, f.ID, f.Status, next, adminName, at); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Lost a race with a concurrent reviewer.
			metrics.FeedbackReviewsTotal.WithLabelValues("invalid_transition").Inc()
		}
		return nil, fmt.Errorf("review feedback: %w", err)
	}

	f.Status = next
	f.AdminName = adminName
	f.ReviewedAt = &at

	metrics.FeedbackReviewsTotal.WithLabelValues(string(next)).Inc()
	s.log.Info().
		Str("feedback_id", f.ID).
		Str("status", string(next)).
		Str("admin", adminName).
		Msg("feedback reviewed")

	return f, nil
}

func (s *feedbackService) ImageURL(ctx context.Context, f *domain.Feedback) (string, error) {
	if f == nil || f.Image.Key == "" {
		return "", nil
	}
	return s.images.URL(ctx, f.Image.Key)
}
