package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	zap "go.uber.org/zap"
)

const professionalCollectionName = "professionals"

// ProfessionalRepository implements the domain.ProfessionalRepository
// interface using MongoDB.
type ProfessionalRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewProfessionalRepository creates a new MongoDB professional repository.
func NewProfessionalRepository(db *mongo.Database, log *logger.Logger) (*ProfessionalRepository, error) {
	collection := db.Collection(professionalCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "show_rating", Value: 1}, {Key: "average_rating", Value: -1}}}, // For minimum-rating filtering
		{Keys: bson.D{{Key: "recommended_by", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for professionals collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for professionals collection")
	}

	return &ProfessionalRepository{
		collection: collection,
		logger:     log.Named("ProfessionalRepository"),
	}, nil
}

func parseProfessionalID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid professional id %q", domain.ErrInvalidInput, id)
	}
	return oid, nil
}

// Create inserts a new professional. The generated ID is written back to the
// domain entity.
func (r *ProfessionalRepository) Create(ctx context.Context, p *domain.Professional) error {
	r.logger.Info("Creating professional in DB", zap.String("user_id", p.UserID), zap.String("name", p.Name))

	now := time.Now().UTC()
	doc := &professionalDocument{
		ID:                  primitive.NewObjectID(),
		UserID:              p.UserID,
		Name:                p.Name,
		Category:            p.Category,
		Specialties:         p.Specialties,
		City:                p.City,
		Bio:                 p.Bio,
		RecommendationCount: 0,
		RecommendedBy:       []string{},
		TotalRatings:        0,
		AverageRating:       0,
		ShowRating:          false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("Failed to insert professional into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	p.ID = doc.ID.Hex()
	p.RecommendedBy = doc.RecommendedBy
	p.CreatedAt = now
	p.UpdatedAt = now
	r.logger.Info("Professional created successfully in DB", zap.String("professional_id", p.ID))
	return nil
}

// GetByID retrieves a professional by its ID.
func (r *ProfessionalRepository) GetByID(ctx context.Context, id string) (*domain.Professional, error) {
	r.logger.Debug("Getting professional by ID from DB", zap.String("professional_id", id))
	oid, err := parseProfessionalID(id)
	if err != nil {
		return nil, err
	}

	var doc professionalDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Professional not found in DB", zap.String("professional_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get professional by ID from DB", zap.Error(err), zap.String("professional_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies the non-nil fields of the update to the entry.
func (r *ProfessionalRepository) Update(ctx context.Context, id string, update domain.ProfessionalUpdate) error {
	r.logger.Info("Updating professional in DB", zap.String("professional_id", id))
	oid, err := parseProfessionalID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Specialties != nil {
		set["specialties"] = *update.Specialties
	}
	if update.City != nil {
		set["city"] = *update.City
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update professional in DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Professional not found for update in DB", zap.String("professional_id", id))
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a professional from the database.
func (r *ProfessionalRepository) Delete(ctx context.Context, id string) error {
	r.logger.Info("Deleting professional from DB", zap.String("professional_id", id))
	oid, err := parseProfessionalID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete professional from DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		r.logger.Warn("Professional not found for deletion in DB", zap.String("professional_id", id))
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the professional entry owned by the user, if any.
func (r *ProfessionalRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.logger.Info("Deleting professional by user_id from DB", zap.String("user_id", userID))
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error("Failed to delete professional by user_id from DB", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateRatingStats overwrites the denormalized aggregate on the entry.
func (r *ProfessionalRepository) UpdateRatingStats(ctx context.Context, id string, stats domain.RatingStats) error {
	r.logger.Debug("Updating rating stats in DB",
		zap.String("professional_id", id),
		zap.Int32("total_ratings", stats.TotalRatings),
		zap.Float64("average_rating", stats.AverageRating),
		zap.Bool("show_rating", stats.ShowRating),
	)
	oid, err := parseProfessionalID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"total_ratings":  stats.TotalRatings,
		"average_rating": stats.AverageRating,
		"show_rating":    stats.ShowRating,
		"updated_at":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		r.logger.Error("Failed to update rating stats in DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Professional not found for stats update in DB", zap.String("professional_id", id))
		return domain.ErrNotFound
	}
	return nil
}

// FilterByMinimumRating returns IDs of entries with a disclosed aggregate and
// an average of at least min, best first.
func (r *ProfessionalRepository) FilterByMinimumRating(ctx context.Context, min float64) ([]string, error) {
	r.logger.Debug("Filtering professionals by minimum rating from DB", zap.Float64("min", min))

	filter := bson.M{
		"show_rating":    true,
		"average_rating": bson.M{"$gte": min},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "average_rating", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to filter professionals by minimum rating from DB", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode filtered professional IDs from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID.Hex()
	}
	return ids, nil
}

// ListAfter returns up to limit entries ordered by ID, strictly after the
// cursor position.
func (r *ProfessionalRepository) ListAfter(ctx context.Context, cursor domain.Cursor, limit int64) ([]*domain.Professional, error) {
	r.logger.Debug("Listing professionals after cursor from DB", zap.String("cursor", string(cursor)), zap.Int64("limit", limit))

	filter := bson.M{}
	if cursor != "" {
		oid, err := primitive.ObjectIDFromHex(string(cursor))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid cursor %q", domain.ErrInvalidInput, string(cursor))
		}
		filter["_id"] = bson.M{"$gt": oid}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(limit)

	mongoCursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to list professionals from DB", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer mongoCursor.Close(ctx)

	var docs []*professionalDocument
	if err = mongoCursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode professionals from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainProfessionals(docs), nil
}

// AddRecommendation appends userID to the entry's recommenders and bumps the
// counter. The filter excludes entries the user already recommended so the
// counter can never double-increment.
func (r *ProfessionalRepository) AddRecommendation(ctx context.Context, id, userID string) error {
	r.logger.Info("Adding recommendation in DB", zap.String("professional_id", id), zap.String("user_id", userID))
	oid, err := parseProfessionalID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "recommended_by": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"recommended_by": userID},
		"$inc":      bson.M{"recommendation_count": 1},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to add recommendation in DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.errIfMissing(ctx, oid, id)
	}
	return nil
}

// RemoveRecommendation removes userID from the recommenders and decrements
// the counter; removing an absent recommendation is a no-op.
func (r *ProfessionalRepository) RemoveRecommendation(ctx context.Context, id, userID string) error {
	r.logger.Info("Removing recommendation in DB", zap.String("professional_id", id), zap.String("user_id", userID))
	oid, err := parseProfessionalID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "recommended_by": userID}
	update := bson.M{
		"$pull": bson.M{"recommended_by": userID},
		"$inc":  bson.M{"recommendation_count": -1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to remove recommendation in DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.errIfMissing(ctx, oid, id)
	}
	return nil
}

// errIfMissing distinguishes "entry does not exist" from "entry exists but
// the conditional update matched nothing", which is a successful no-op.
func (r *ProfessionalRepository) errIfMissing(ctx context.Context, oid primitive.ObjectID, id string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to check professional existence in DB", zap.Error(err), zap.String("professional_id", id))
		return fmt.Errorf("db count failed: %w", err)
	}
	if count == 0 {
		r.logger.Warn("Professional not found in DB", zap.String("professional_id", id))
		return domain.ErrNotFound
	}
	return nil
}

// ListRecommendedBy returns the entries a user has recommended.
func (r *ProfessionalRepository) ListRecommendedBy(ctx context.Context, userID string) ([]*domain.Professional, error) {
	r.logger.Debug("Listing professionals recommended by user from DB", zap.String("user_id", userID))

	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recommended_by": userID}, findOptions)
	if err != nil {
		r.logger.Error("Failed to list recommended professionals from DB", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*professionalDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode recommended professionals from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainProfessionals(docs), nil
}
