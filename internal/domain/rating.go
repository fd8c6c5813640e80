package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinRatingsToDisclose is the minimum number of ratings a professional must
// collect before the average is shown to users. A profile with a single
// five-star rating must not outrank one with fifty four-star ratings, so the
// average stays hidden until the sample is large enough. Implementers who
// need a different threshold should externalize this constant.
const MinRatingsToDisclose = 10

// Rating represents one user's star rating of one professional.
// At most one Rating exists per (professional, user) pair; a repeated
// submission overwrites the score and timestamp instead of creating a new
// record.
type Rating struct {
	ID             primitive.ObjectID
	ProfessionalID string
	UserID         string
	Score          int32 // 1-5 stars
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewRating creates a rating instance after validating its fields.
func NewRating(professionalID, userID string, score int32) (*Rating, error) {
	if professionalID == "" {
		return nil, errors.New("professionalID cannot be empty")
	}
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if score < 1 || score > 5 {
		return nil, errors.New("score must be between 1 and 5")
	}
	now := time.Now().UTC()
	return &Rating{
		ID:             primitive.NewObjectID(),
		ProfessionalID: professionalID,
		UserID:         userID,
		Score:          score,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// RatingStats is the denormalized aggregate persisted on the professional
// document. It is recomputed from the full rating set on every write, never
// maintained incrementally.
type RatingStats struct {
	TotalRatings  int32
	AverageRating float64
	ShowRating    bool
}

// CalculateRatingStats derives the aggregate for a set of scores.
// A zero-length set yields a zero-valued aggregate (no division by zero).
func CalculateRatingStats(scores []int32) RatingStats {
	total := int32(len(scores))
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	var average float64
	if total > 0 {
		average = float64(sum) / float64(total)
	}
	return RatingStats{
		TotalRatings:  total,
		AverageRating: average,
		ShowRating:    total >= MinRatingsToDisclose,
	}
}
