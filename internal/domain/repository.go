package domain

import "context"

// RatingRepository persists individual ratings. Methods operate on clean
// domain entities; the mapping to database structures lives in the adapter.
type RatingRepository interface {
	// Upsert creates the rating for (professionalID, userID) or overwrites
	// its score and timestamp when one already exists.
	Upsert(ctx context.Context, professionalID, userID string, score int32) error

	// FindByProfessionalAndUser returns the pair's rating, or ErrNotFound.
	FindByProfessionalAndUser(ctx context.Context, professionalID, userID string) (*Rating, error)

	// ListScoresByProfessional returns every score recorded for the
	// professional. The full set is read on each aggregate recomputation.
	ListScoresByProfessional(ctx context.Context, professionalID string) ([]int32, error)
}

// ProfessionalRepository persists directory entries and their denormalized
// aggregates.
type ProfessionalRepository interface {
	Create(ctx context.Context, p *Professional) error
	GetByID(ctx context.Context, id string) (*Professional, error)
	Update(ctx context.Context, id string, update ProfessionalUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error

	// UpdateRatingStats overwrites the aggregate fields on the entry.
	UpdateRatingStats(ctx context.Context, id string, stats RatingStats) error

	// FilterByMinimumRating returns IDs of entries whose aggregate is
	// disclosed and whose average is at least min, ordered by average
	// descending.
	FilterByMinimumRating(ctx context.Context, min float64) ([]string, error)

	// ListAfter returns up to limit entries ordered by ID, strictly after
	// the cursor position.
	ListAfter(ctx context.Context, cursor Cursor, limit int64) ([]*Professional, error)

	// AddRecommendation appends userID to the entry's recommenders and
	// bumps the counter; it is a no-op when the user already recommended.
	AddRecommendation(ctx context.Context, id, userID string) error
	// RemoveRecommendation removes userID and decrements the counter; it
	// is a no-op when the user had not recommended.
	RemoveRecommendation(ctx context.Context, id, userID string) error
	// ListRecommendedBy returns the entries a user has recommended.
	ListRecommendedBy(ctx context.Context, userID string) ([]*Professional, error)
}

// UserRepository persists user profiles and the symmetric friendship sets.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, update UserProfileUpdate) error
	SetPhotoURL(ctx context.Context, id, url string) error

	// AddFriendship writes both sides of the relation in one transaction.
	AddFriendship(ctx context.Context, userID, friendID string) error
	// RemoveFriendship removes both sides in one transaction; removing an
	// absent relation succeeds.
	RemoveFriendship(ctx context.Context, userID, friendID string) error

	AddFavorite(ctx context.Context, userID, professionalID string) error
	RemoveFavorite(ctx context.Context, userID, professionalID string) error

	// ListAfter returns up to limit users ordered by ID, strictly after
	// the cursor, excluding the given IDs. The exclusion slice must not
	// exceed MaxExclusionPerQuery; callers with larger sets post-filter.
	ListAfter(ctx context.Context, cursor Cursor, limit int64, excludeIDs []string) ([]*User, error)
}
