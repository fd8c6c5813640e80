package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Professional is a directory entry for a user offering services.
// RecommendationCount and RecommendedBy are maintained with atomic field
// updates (append-unique plus counter increment); the rating aggregate
// fields are recomputed from the full rating set instead, which stays
// correct under concurrent writes at the cost of a full re-read.
type Professional struct {
	ID                  string
	UserID              string
	Name                string
	Category            string
	Specialties         []string
	City                string
	Bio                 string
	RecommendationCount int32
	RecommendedBy       []string
	Stats               RatingStats
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewProfessional creates a directory entry with zeroed counters.
func NewProfessional(userID, name, category, city string, specialties []string, bio string) (*Professional, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if category == "" {
		return nil, errors.New("category cannot be empty")
	}
	now := time.Now().UTC()
	return &Professional{
		ID:            primitive.NewObjectID().Hex(),
		UserID:        userID,
		Name:          name,
		Category:      category,
		Specialties:   specialties,
		City:          city,
		Bio:           bio,
		RecommendedBy: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ProfessionalUpdate carries the mutable directory fields for a merge update.
type ProfessionalUpdate struct {
	Name        *string
	Category    *string
	Specialties *[]string
	City        *string
	Bio         *string
}
