package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/partlens/recognition-api/internal/core/domain"
)

const collectionFeedback = "feedback"

// FeedbackRepository implements ports.FeedbackRepository using MongoDB.
type FeedbackRepository struct {
	col *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) *FeedbackRepository {
	return &FeedbackRepository{col: db.Collection(collectionFeedback)}
}

type feedbackImageDoc struct {
	Key         string `bson:"key"`
	Name        string `bson:"name,omitempty"`
	Size        int64  `bson:"size"`
	ContentType string `bson:"content_type"`
}

type feedbackDoc struct {
	ID           string           `bson:"_id"`
	Username     string           `bson:"username"`
	PredictedSKU string           `bson:"predicted_sku"`
	CorrectSKU   string           `bson:"correct_sku"`
	Image        feedbackImageDoc `bson:"image"`
	SubmittedAt  time.Time        `bson:"submitted_at"`
	Status       string           `bson:"status"`
	AdminName    string           `bson:"admin_name,omitempty"`
	ReviewedAt   *time.Time       `bson:"reviewed_at,omitempty"`
}

func toFeedbackDoc(f *domain.Feedback) feedbackDoc {
	return feedbackDoc{
		ID:           f.ID,
		Username:     f.Username,
		PredictedSKU: f.PredictedSKU,
		CorrectSKU:   f.CorrectSKU,
		Image: feedbackImageDoc{
			Key:         f.Image.Key,
			Name:        f.Image.Name,
			Size:        f.Image.Size,
			ContentType: f.Image.ContentType,
		},
		SubmittedAt: f.SubmittedAt.UTC(),
		Status:      string(f.Status),
		AdminName:   f.AdminName,
		ReviewedAt:  f.ReviewedAt,
	}
}

func (d feedbackDoc) toDomain() *domain.Feedback {
	return &domain.Feedback{
		ID:           d.ID,
		Username:     d.Username,
		PredictedSKU: d.PredictedSKU,
		CorrectSKU:   d.CorrectSKU,
		Image: domain.FeedbackImage{
			Key:         d.Image.Key,
			Name:        d.Image.Name,
			Size:        d.Image.Size,
			ContentType: d.Image.ContentType,
		},
		SubmittedAt: d.SubmittedAt,
		Status:      domain.FeedbackStatus(d.Status),
		AdminName:   d.AdminName,
		ReviewedAt:  d.ReviewedAt,
	}
}

// EnsureIndexes creates the status/submission index used by the pending queue.
func (r *FeedbackRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toFeedbackDoc(f)); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc feedbackDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FeedbackRepository) ListByStatus(ctx context.Context, status domain.FeedbackStatus, limit int) ([]*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer cur.Close(ctx)

	var docs []feedbackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}

	out := make([]*domain.Feedback, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Transition is a compare-and-set on status: only a record still in from is
// updated, so concurrent reviewers cannot both succeed.
func (r *FeedbackRepository) Transition(ctx context.Context, id string, from, to domain.FeedbackStatus, adminName string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(from)}
	update := bson.M{"$set": bson.M{
		"status":      string(to),
		"admin_name":  adminName,
		"reviewed_at": at.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("transition feedback: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("transition feedback: %w", err)
	}
	if n == 0 {
		return domain.ErrFeedbackNotFound
	}
	return domain.ErrInvalidTransition
}
