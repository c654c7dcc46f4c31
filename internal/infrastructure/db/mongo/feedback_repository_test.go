package mongo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlens/recognition-api/internal/core/domain"
)

func seedFeedback(t *testing.T, repo *FeedbackRepository, id string) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Feedback{
		ID:           id,
		Username:     "alice",
		PredictedSKU: "SP-100",
		CorrectSKU:   "SP-200",
		Image:        domain.FeedbackImage{Key: "feedback/" + id + ".png", Size: 68, ContentType: "image/png"},
		SubmittedAt:  time.Now().UTC(),
		Status:       domain.FeedbackPending,
	})
	require.NoError(t, err)
}

func TestFeedbackRepository_Transition(t *testing.T) {
	db := testDatabase(t)
	repo := NewFeedbackRepository(db)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	ctx := context.Background()

	seedFeedback(t, repo, "fb-1")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Transition(ctx, "fb-1", domain.FeedbackPending, domain.FeedbackApproved, "root", at))

	got, err := repo.FindByID(ctx, "fb-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackApproved, got.Status)
	assert.Equal(t, "root", got.AdminName)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(at))

	pending, err := repo.ListByStatus(ctx, domain.FeedbackPending, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFeedbackRepository_Transition_AlreadyReviewed(t *testing.T) {
	db := testDatabase(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	seedFeedback(t, repo, "fb-2")
	require.NoError(t, repo.Transition(ctx, "fb-2", domain.FeedbackPending, domain.FeedbackRejected, "mod", time.Now()))

	err := repo.Transition(ctx, "fb-2", domain.FeedbackPending, domain.FeedbackApproved, "root", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := repo.FindByID(ctx, "fb-2")
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackRejected, got.Status)
	assert.Equal(t, "mod", got.AdminName)
}

func TestFeedbackRepository_Transition_NotFound(t *testing.T) {
	db := testDatabase(t)
	repo := NewFeedbackRepository(db)

	err := repo.Transition(context.Background(), "missing", domain.FeedbackPending, domain.FeedbackApproved, "root", time.Now())
	assert.ErrorIs(t, err, domain.ErrFeedbackNotFound)
}

func TestFeedbackRepository_Transition_ConcurrentReviewersOneWins(t *testing.T) {
	db := testDatabase(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	seedFeedback(t, repo, "fb-3")

	const reviewers = 8
	errs := make([]error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := domain.FeedbackApproved
			if i%2 == 1 {
				to = domain.FeedbackRejected
			}
			errs[i] = repo.Transition(ctx, "fb-3", domain.FeedbackPending, to, "reviewer", time.Now())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, wins)
}
