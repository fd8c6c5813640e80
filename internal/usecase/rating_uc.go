package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"go.uber.org/zap"
)

// RatingUsecase implements the business logic for submitting ratings and
// maintaining the disclosure-gated aggregate.
type RatingUsecase struct {
	ratings       domain.RatingRepository
	professionals domain.ProfessionalRepository
	publisher     EventPublisher
	logger        *logger.Logger
}

// NewRatingUsecase creates a new RatingUsecase.
func NewRatingUsecase(ratings domain.RatingRepository, professionals domain.ProfessionalRepository, pub EventPublisher, log *logger.Logger) *RatingUsecase {
	return &RatingUsecase{
		ratings:       ratings,
		professionals: professionals,
		publisher:     pub,
		logger:        log.Named("RatingUsecase"),
	}
}

// SubmitRating records the user's score for the professional. A repeated
// submission by the same user overwrites the previous score instead of adding
// a second rating. The aggregate is recomputed from the full rating set after
// the write and the fresh value is returned.
func (uc *RatingUsecase) SubmitRating(ctx context.Context, professionalID, userID string, score int32) (domain.RatingStats, error) {
	uc.logger.Info("Submitting rating",
		zap.String("professional_id", professionalID),
		zap.String("user_id", userID),
		zap.Int32("score", score))

	if professionalID == "" {
		return domain.RatingStats{}, fmt.Errorf("%w: professionalID cannot be empty", domain.ErrInvalidInput)
	}
	if userID == "" {
		return domain.RatingStats{}, fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}
	if score < 1 || score > 5 {
		return domain.RatingStats{}, fmt.Errorf("%w: score must be between 1 and 5", domain.ErrInvalidInput)
	}

	// The target must exist before any rating is written for it.
	if _, err := uc.professionals.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return domain.RatingStats{}, err
		}
		return domain.RatingStats{}, fmt.Errorf("%w: failed to load professional: %v", domain.ErrRepository, err)
	}

	if err := uc.ratings.Upsert(ctx, professionalID, userID, score); err != nil {
		uc.logger.Error("Failed to upsert rating", zap.Error(err))
		return domain.RatingStats{}, fmt.Errorf("%w: failed to submit rating: %v", domain.ErrRepository, err)
	}

	stats, err := uc.RecomputeAggregate(ctx, professionalID)
	if err != nil {
		return domain.RatingStats{}, err
	}

	eventData := map[string]interface{}{
		"professional_id": professionalID,
		"user_id":         userID,
		"score":           score,
		"total_ratings":   stats.TotalRatings,
		"show_rating":     stats.ShowRating,
		"submitted_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectRatingSubmitted, eventData); err != nil {
		uc.logger.Warn("Failed to publish rating.submitted event", zap.Error(err), zap.String("professional_id", professionalID))
	}

	uc.logger.Info("Rating submitted successfully",
		zap.String("professional_id", professionalID),
		zap.Int32("total_ratings", stats.TotalRatings))
	return stats, nil
}

// RecomputeAggregate rebuilds the professional's rating aggregate from the
// full rating set and persists it. The recomputation is idempotent: running
// it any number of times over the same rating set yields the same aggregate.
func (uc *RatingUsecase) RecomputeAggregate(ctx context.Context, professionalID string) (domain.RatingStats, error) {
	uc.logger.Debug("Recomputing rating aggregate", zap.String("professional_id", professionalID))

	scores, err := uc.ratings.ListScoresByProfessional(ctx, professionalID)
	if err != nil {
		uc.logger.Error("Failed to list scores for aggregate recomputation", zap.Error(err))
		return domain.RatingStats{}, fmt.Errorf("%w: failed to list scores: %v", domain.ErrRepository, err)
	}

	stats := domain.CalculateRatingStats(scores)
	if err := uc.professionals.UpdateRatingStats(ctx, professionalID, stats); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return domain.RatingStats{}, err
		}
		uc.logger.Error("Failed to persist rating aggregate", zap.Error(err))
		return domain.RatingStats{}, fmt.Errorf("%w: failed to persist aggregate: %v", domain.ErrRepository, err)
	}
	return stats, nil
}

// GetUserRating returns the rating the user gave the professional, or nil
// when the user has not rated yet. Absence is a normal answer here, not an
// error.
func (uc *RatingUsecase) GetUserRating(ctx context.Context, professionalID, userID string) (*domain.Rating, error) {
	uc.logger.Debug("Getting user rating",
		zap.String("professional_id", professionalID),
		zap.String("user_id", userID))

	if professionalID == "" || userID == "" {
		return nil, fmt.Errorf("%w: professionalID and userID are required", domain.ErrInvalidInput)
	}

	rating, err := uc.ratings.FindByProfessionalAndUser(ctx, professionalID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		uc.logger.Error("Failed to get user rating", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to get rating: %v", domain.ErrRepository, err)
	}
	return rating, nil
}

// GetAggregate returns the professional's rating aggregate. Below the
// disclosure threshold the average is withheld (zeroed) so small samples
// never leak through this surface; the count is always reported.
func (uc *RatingUsecase) GetAggregate(ctx context.Context, professionalID string) (domain.RatingStats, error) {
	uc.logger.Debug("Getting rating aggregate", zap.String("professional_id", professionalID))

	p, err := uc.professionals.GetByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return domain.RatingStats{}, err
		}
		return domain.RatingStats{}, fmt.Errorf("%w: failed to load professional: %v", domain.ErrRepository, err)
	}

	stats := p.Stats
	if !stats.ShowRating {
		stats.AverageRating = 0
	}
	return stats, nil
}

// FilterByMinimumAggregate returns IDs of professionals whose disclosed
// average is at least min, best first. Professionals below the disclosure
// threshold never match, regardless of their hidden average. Any min is
// accepted; zero or negative matches every disclosed entry.
func (uc *RatingUsecase) FilterByMinimumAggregate(ctx context.Context, min float64) ([]string, error) {
	uc.logger.Debug("Filtering professionals by minimum aggregate", zap.Float64("min", min))

	ids, err := uc.professionals.FilterByMinimumRating(ctx, min)
	if err != nil {
		uc.logger.Error("Failed to filter by minimum rating", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to filter professionals: %v", domain.ErrRepository, err)
	}
	return ids, nil
}
