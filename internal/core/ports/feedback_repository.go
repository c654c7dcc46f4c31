package ports

import (
	"context"
	"time"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// FeedbackRepository handles feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
	FindByID(ctx context.Context, id string) (*domain.Feedback, error)
	// ListByStatus returns at most limit records, most recent submission first.
	ListByStatus(ctx context.Context, status domain.FeedbackStatus, limit int) ([]*domain.Feedback, error)
	// Transition atomically moves a record from one status to another and
	// stamps the reviewer. It returns domain.ErrFeedbackNotFound when the id
	// is unknown and domain.ErrInvalidTransition when the stored status is
	// no longer from.
	Transition(ctx context.Context, id string, from, to domain.FeedbackStatus, adminName string, at time.Time) error
}

// ImageStore persists feedback images.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// URL returns a time-limited link a reviewer can open.
	URL(ctx context.Context, key string) (string, error)
}
