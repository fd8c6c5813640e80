package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	zap "go.uber.org/zap"
)

const ratingCollectionName = "ratings"

// RatingRepository implements the domain.RatingRepository interface using MongoDB.
type RatingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewRatingRepository creates a new MongoDB rating repository.
func NewRatingRepository(db *mongo.Database, log *logger.Logger) (*RatingRepository, error) {
	collection := db.Collection(ratingCollectionName)

	indexes := []mongo.IndexModel{
		// One rating per user per professional; the upsert path relies on this.
		{Keys: bson.D{{Key: "professional_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "professional_id", Value: 1}}}, // For aggregate recomputation scans
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for ratings collection", zap.Error(err))
		// Don't necessarily fail startup, as indexes might already exist or be created manually.
	} else {
		log.Info("Successfully ensured indexes for ratings collection")
	}

	return &RatingRepository{
		collection: collection,
		logger:     log.Named("RatingRepository"),
	}, nil
}

// Upsert creates or overwrites the rating for (professionalID, userID).
// created_at is only written on first insert so the original submission time
// survives overwrites.
func (r *RatingRepository) Upsert(ctx context.Context, professionalID, userID string, score int32) error {
	r.logger.Info("Upserting rating in DB",
		zap.String("professional_id", professionalID),
		zap.String("user_id", userID),
		zap.Int32("score", score),
	)

	now := time.Now().UTC()
	filter := bson.M{"professional_id": professionalID, "user_id": userID}
	update := bson.M{
		"$set":         bson.M{"score": score, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent first-time upserts can race on the unique index; the
		// loser's retry is a plain overwrite and cannot race again.
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate key on rating upsert, retrying as overwrite",
				zap.String("professional_id", professionalID), zap.String("user_id", userID))
			_, retryErr := r.collection.UpdateOne(ctx, filter, update)
			if retryErr != nil {
				return fmt.Errorf("db upsert retry failed: %w", retryErr)
			}
			return nil
		}
		r.logger.Error("Failed to upsert rating in DB", zap.Error(err))
		return fmt.Errorf("db upsert failed: %w", err)
	}

	if result.UpsertedCount > 0 {
		r.logger.Debug("Rating created", zap.String("professional_id", professionalID), zap.String("user_id", userID))
	} else {
		r.logger.Debug("Rating overwritten", zap.String("professional_id", professionalID), zap.String("user_id", userID))
	}
	return nil
}

// FindByProfessionalAndUser returns the pair's rating, or domain.ErrNotFound.
func (r *RatingRepository) FindByProfessionalAndUser(ctx context.Context, professionalID, userID string) (*domain.Rating, error) {
	r.logger.Debug("Getting rating by pair from DB",
		zap.String("professional_id", professionalID),
		zap.String("user_id", userID),
	)
	var doc ratingDocument
	err := r.collection.FindOne(ctx, bson.M{"professional_id": professionalID, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get rating by pair from DB", zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// ListScoresByProfessional returns every score recorded for the professional.
func (r *RatingRepository) ListScoresByProfessional(ctx context.Context, professionalID string) ([]int32, error) {
	r.logger.Debug("Listing scores by professional from DB", zap.String("professional_id", professionalID))

	findOptions := options.Find().SetProjection(bson.M{"score": 1, "_id": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"professional_id": professionalID}, findOptions)
	if err != nil {
		r.logger.Error("Failed to list scores from DB", zap.Error(err), zap.String("professional_id", professionalID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Score int32 `bson:"score"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode scores from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	scores := make([]int32, len(docs))
	for i, doc := range docs {
		scores[i] = doc.Score
	}
	return scores, nil
}
