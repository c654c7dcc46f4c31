package domain

import (
	"errors"
	"time"
)

// FeedbackStatus represents the review state of a feedback record.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackApproved FeedbackStatus = "approved"
	FeedbackRejected FeedbackStatus = "rejected"
)

// validTransitions defines the allowed review transitions. Approved and
// rejected are terminal.
var validTransitions = map[FeedbackStatus][]FeedbackStatus{
	FeedbackPending: {FeedbackApproved, FeedbackRejected},
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrFeedbackNotFound  = errors.New("feedback not found")
)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s FeedbackStatus) CanTransitionTo(next FeedbackStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s FeedbackStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ReviewOutcome maps an approve/reject decision to its terminal status.
func ReviewOutcome(approve bool) FeedbackStatus {
	if approve {
		return FeedbackApproved
	}
	return FeedbackRejected
}

// FeedbackImage references the stored photo attached to a feedback record.
type FeedbackImage struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Feedback is a user-submitted correction proposing the true SKU for an
// image the classifier misidentified.
type Feedback struct {
	ID           string         `json:"feedbackId"`
	Username     string         `json:"username"`
	PredictedSKU string         `json:"predictedSku"`
	CorrectSKU   string         `json:"correctSku"`
	Image        FeedbackImage  `json:"image"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	Status       FeedbackStatus `json:"status"`
	AdminName    string         `json:"adminName,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewedAt,omitempty"`
}
