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

const userCollectionName = "users"

// UserRepository implements the domain.UserRepository interface using
// MongoDB. Documents are keyed by the authentication subject ID.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewUserRepository creates a new MongoDB user repository.
func NewUserRepository(db *mongo.Database, log *logger.Logger) (*UserRepository, error) {
	collection := db.Collection(userCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "friends", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for users collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		collection: collection,
		logger:     log.Named("UserRepository"),
	}, nil
}

// Create writes the full profile document. An existing profile with the same
// ID is replaced, so repeating the call after a partial signup is safe.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	r.logger.Info("Creating user profile in DB", zap.String("user_id", u.ID))
	if u.ID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}

	doc := fromDomainUser(u)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to write user profile to DB", zap.Error(err), zap.String("user_id", u.ID))
		return fmt.Errorf("db replace failed: %w", err)
	}
	r.logger.Info("User profile written successfully to DB", zap.String("user_id", u.ID))
	return nil
}

// GetByID retrieves a user profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.logger.Debug("Getting user by ID from DB", zap.String("user_id", id))
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("User not found in DB", zap.String("user_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get user by ID from DB", zap.Error(err), zap.String("user_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies the non-nil fields of the update to the profile.
func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserProfileUpdate) error {
	r.logger.Info("Updating user profile in DB", zap.String("user_id", id))

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Address != nil {
		set["address"] = addressDocument{
			CEP:     update.Address.CEP,
			Street:  update.Address.Street,
			City:    update.Address.City,
			State:   update.Address.State,
			Country: update.Address.Country,
		}
	}
	if update.ProfessionalProfile != nil {
		set["professional_profile"] = *update.ProfessionalProfile
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update user profile in DB", zap.Error(err), zap.String("user_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("User not found for update in DB", zap.String("user_id", id))
		return domain.ErrNotFound
	}
	return nil
}

// SetPhotoURL stores the profile photo URL. An empty URL clears the field.
func (r *UserRepository) SetPhotoURL(ctx context.Context, id, url string) error {
	r.logger.Info("Setting user photo URL in DB", zap.String("user_id", id), zap.Bool("clearing", url == ""))

	var update bson.M
	if url == "" {
		update = bson.M{
			"$unset": bson.M{"photo_url": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{"photo_url": url, "updated_at": time.Now().UTC()},
		}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to set user photo URL in DB", zap.Error(err), zap.String("user_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddFriendship writes both sides of the relation in a single transaction so
// the friends sets can never disagree.
func (r *UserRepository) AddFriendship(ctx context.Context, userID, friendID string) error {
	r.logger.Info("Adding friendship in DB", zap.String("user_id", userID), zap.String("friend_id", friendID))
	return r.withFriendshipTransaction(ctx, userID, friendID, "$addToSet")
}

// RemoveFriendship removes both sides in a single transaction. Removing an
// absent relation succeeds.
func (r *UserRepository) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	r.logger.Info("Removing friendship in DB", zap.String("user_id", userID), zap.String("friend_id", friendID))
	return r.withFriendshipTransaction(ctx, userID, friendID, "$pull")
}

func (r *UserRepository) withFriendshipTransaction(ctx context.Context, userID, friendID, op string) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		r.logger.Error("Failed to start session for friendship update", zap.Error(err))
		return fmt.Errorf("db session start failed: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.collection.UpdateOne(sessCtx,
			bson.M{"_id": userID},
			bson.M{op: bson.M{"friends": friendID}, "$set": bson.M{"updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("db update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
		}

		res, err = r.collection.UpdateOne(sessCtx,
			bson.M{"_id": friendID},
			bson.M{op: bson.M{"friends": userID}, "$set": bson.M{"updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("db update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, friendID)
		}
		return nil, nil
	}

	if _, err := session.WithTransaction(ctx, callback); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("Friendship update aborted, user missing",
				zap.String("user_id", userID), zap.String("friend_id", friendID), zap.Error(err))
			return err
		}
		r.logger.Error("Friendship transaction failed", zap.Error(err),
			zap.String("user_id", userID), zap.String("friend_id", friendID))
		return fmt.Errorf("db transaction failed: %w", err)
	}
	return nil
}

// AddFavorite appends the professional to the user's favorites set.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, professionalID string) error {
	r.logger.Info("Adding favorite in DB", zap.String("user_id", userID), zap.String("professional_id", professionalID))
	return r.updateFavorites(ctx, userID, professionalID, "$addToSet")
}

// RemoveFavorite removes the professional from the user's favorites set.
// Removing an absent favorite succeeds.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, professionalID string) error {
	r.logger.Info("Removing favorite in DB", zap.String("user_id", userID), zap.String("professional_id", professionalID))
	return r.updateFavorites(ctx, userID, professionalID, "$pull")
}

func (r *UserRepository) updateFavorites(ctx context.Context, userID, professionalID, op string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{op: bson.M{"favorites": professionalID}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		r.logger.Error("Failed to update favorites in DB", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("User not found for favorites update in DB", zap.String("user_id", userID))
		return domain.ErrNotFound
	}
	return nil
}

// ListAfter returns up to limit users ordered by ID, strictly after the
// cursor, excluding the given IDs. The exclusion slice is capped at
// domain.MaxExclusionPerQuery; callers with larger sets post-filter.
func (r *UserRepository) ListAfter(ctx context.Context, cursor domain.Cursor, limit int64, excludeIDs []string) ([]*domain.User, error) {
	r.logger.Debug("Listing users after cursor from DB",
		zap.String("cursor", string(cursor)),
		zap.Int64("limit", limit),
		zap.Int("exclusions", len(excludeIDs)),
	)
	if len(excludeIDs) > domain.MaxExclusionPerQuery {
		return nil, fmt.Errorf("%w: exclusion set of %d exceeds the per-query limit of %d",
			domain.ErrInvalidInput, len(excludeIDs), domain.MaxExclusionPerQuery)
	}

	idFilter := bson.M{}
	if cursor != "" {
		idFilter["$gt"] = string(cursor)
	}
	if len(excludeIDs) > 0 {
		idFilter["$nin"] = excludeIDs
	}
	filter := bson.M{}
	if len(idFilter) > 0 {
		filter["_id"] = idFilter
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(limit)

	mongoCursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to list users from DB", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer mongoCursor.Close(ctx)

	var docs []*userDocument
	if err = mongoCursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode users from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainUsers(docs), nil
}
