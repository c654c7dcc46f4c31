package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// SubmitFeedbackInput is the DTO passed from the transport layer to FeedbackService.
type SubmitFeedbackInput struct {
	Image        []byte
	ImageName    string
	PredictedSKU string
	CorrectSKU   string
	Username     string
}

// ReviewInput carries an approve/reject decision.
type ReviewInput struct {
	FeedbackID string
	Approve    bool
	AdminName  string
}

// FeedbackService defines the feedback lifecycle use cases.
type FeedbackService interface {
	Submit(ctx context.Context, input SubmitFeedbackInput) (*domain.Feedback, error)
	ListPending(ctx context.Context, limit int) ([]*domain.Feedback, error)
	Get(ctx context.Context, id string) (*domain.Feedback, error)
	Review(ctx context.Context, input ReviewInput) (*domain.Feedback, error)
	ImageURL(ctx context.Context, f *domain.Feedback) (string, error)
}
