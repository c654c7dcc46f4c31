package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/partlens/recognition-api/internal/core/domain"
)

const collectionUploads = "uploads"

// UploadRepository is the append-only audit log of reference uploads.
type UploadRepository struct {
	col *mongo.Collection
}

func NewUploadRepository(db *mongo.Database) *UploadRepository {
	return &UploadRepository{col: db.Collection(collectionUploads)}
}

func (r *UploadRepository) Create(ctx context.Context, u *domain.Upload) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"_id":         u.ID,
		"sku_code":    u.SKU,
		"username":    u.Username,
		"file_name":   u.FileName,
		"size":        u.Size,
		"upstream_id": u.UpstreamID,
		"uploaded_at": u.UploadedAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}
