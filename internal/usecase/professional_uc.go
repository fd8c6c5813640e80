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

// ProfessionalUsecase implements the business logic for directory entries and
// recommendations.
type ProfessionalUsecase struct {
	professionals domain.ProfessionalRepository
	users         domain.UserRepository
	publisher     EventPublisher
	logger        *logger.Logger
}

// NewProfessionalUsecase creates a new ProfessionalUsecase.
func NewProfessionalUsecase(professionals domain.ProfessionalRepository, users domain.UserRepository, pub EventPublisher, log *logger.Logger) *ProfessionalUsecase {
	return &ProfessionalUsecase{
		professionals: professionals,
		users:         users,
		publisher:     pub,
		logger:        log.Named("ProfessionalUsecase"),
	}
}

// Register creates a directory entry for the user and flags their profile as
// professional.
func (uc *ProfessionalUsecase) Register(ctx context.Context, userID, name, category, city string, specialties []string, bio string) (*domain.Professional, error) {
	uc.logger.Info("Registering professional",
		zap.String("user_id", userID),
		zap.String("name", name),
		zap.String("category", category))

	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load user: %v", domain.ErrRepository, err)
	}

	professional, err := domain.NewProfessional(userID, name, category, city, specialties, bio)
	if err != nil {
		uc.logger.Error("Failed to create new domain professional instance", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := uc.professionals.Create(ctx, professional); err != nil {
		uc.logger.Error("Failed to save professional to repository", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to register professional: %v", domain.ErrRepository, err)
	}

	hasProfile := true
	if err := uc.users.Update(ctx, userID, domain.UserProfileUpdate{ProfessionalProfile: &hasProfile}); err != nil {
		uc.logger.Warn("Failed to flag user profile as professional", zap.Error(err), zap.String("user_id", userID))
	}

	eventData := map[string]interface{}{
		"professional_id": professional.ID,
		"user_id":         userID,
		"category":        category,
		"registered_at":   professional.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectProfessionalRegistered, eventData); err != nil {
		uc.logger.Warn("Failed to publish professional.registered event", zap.Error(err), zap.String("professional_id", professional.ID))
	}

	uc.logger.Info("Professional registered successfully", zap.String("professional_id", professional.ID))
	return professional, nil
}

// Get retrieves a directory entry. Below the disclosure threshold the
// average is withheld from the returned aggregate.
func (uc *ProfessionalUsecase) Get(ctx context.Context, id string) (*domain.Professional, error) {
	uc.logger.Debug("Getting professional", zap.String("professional_id", id))

	professional, err := uc.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get professional: %v", domain.ErrRepository, err)
	}
	if !professional.Stats.ShowRating {
		professional.Stats.AverageRating = 0
	}
	return professional, nil
}

// Update applies a merge update to the caller's own entry.
func (uc *ProfessionalUsecase) Update(ctx context.Context, id, callerID string, update domain.ProfessionalUpdate) error {
	uc.logger.Info("Updating professional", zap.String("professional_id", id), zap.String("caller_id", callerID))

	professional, err := uc.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: failed to load professional: %v", domain.ErrRepository, err)
	}
	if professional.UserID != callerID {
		uc.logger.Warn("User forbidden to update professional",
			zap.String("professional_id", id),
			zap.String("owner_id", professional.UserID),
			zap.String("caller_id", callerID))
		return domain.ErrForbidden
	}

	if err := uc.professionals.Update(ctx, id, update); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: failed to update professional: %v", domain.ErrRepository, err)
	}
	return nil
}

// Delete removes the caller's own entry and clears the professional flag on
// their user profile.
func (uc *ProfessionalUsecase) Delete(ctx context.Context, id, callerID string) error {
	uc.logger.Info("Deleting professional", zap.String("professional_id", id), zap.String("caller_id", callerID))

	professional, err := uc.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: failed to load professional: %v", domain.ErrRepository, err)
	}
	if professional.UserID != callerID {
		uc.logger.Warn("User forbidden to delete professional",
			zap.String("professional_id", id),
			zap.String("owner_id", professional.UserID),
			zap.String("caller_id", callerID))
		return domain.ErrForbidden
	}

	if err := uc.professionals.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: failed to delete professional: %v", domain.ErrRepository, err)
	}

	hasProfile := false
	if err := uc.users.Update(ctx, professional.UserID, domain.UserProfileUpdate{ProfessionalProfile: &hasProfile}); err != nil {
		uc.logger.Warn("Failed to clear professional flag on user profile", zap.Error(err), zap.String("user_id", professional.UserID))
	}

	uc.logger.Info("Professional deleted successfully", zap.String("professional_id", id))
	return nil
}

// DeregisterByUser removes the caller's directory entry looked up by owner,
// for users who leave the directory without knowing their entry ID.
func (uc *ProfessionalUsecase) DeregisterByUser(ctx context.Context, userID string) error {
	uc.logger.Info("Deregistering professional by user", zap.String("user_id", userID))

	if userID == "" {
		return fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}

	if err := uc.professionals.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to deregister professional: %v", domain.ErrRepository, err)
	}

	hasProfile := false
	if err := uc.users.Update(ctx, userID, domain.UserProfileUpdate{ProfessionalProfile: &hasProfile}); err != nil {
		uc.logger.Warn("Failed to clear professional flag on user profile", zap.Error(err), zap.String("user_id", userID))
	}

	uc.logger.Info("Professional deregistered successfully", zap.String("user_id", userID))
	return nil
}

// Recommend records the user's recommendation of the professional. Repeating
// the recommendation is a no-op: the counter never double-counts a user.
func (uc *ProfessionalUsecase) Recommend(ctx context.Context, id, userID string) error {
	uc.logger.Info("Recommending professional", zap.String("professional_id", id), zap.String("user_id", userID))

	if userID == "" {
		return fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}

	if err := uc.professionals.AddRecommendation(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		uc.logger.Error("Failed to add recommendation", zap.Error(err))
		return fmt.Errorf("%w: failed to recommend professional: %v", domain.ErrRepository, err)
	}

	eventData := map[string]interface{}{
		"professional_id": id,
		"user_id":         userID,
		"recommended_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectProfessionalRecommended, eventData); err != nil {
		uc.logger.Warn("Failed to publish professional.recommended event", zap.Error(err), zap.String("professional_id", id))
	}
	return nil
}

// Unrecommend withdraws the user's recommendation. Withdrawing an absent
// recommendation is a no-op.
func (uc *ProfessionalUsecase) Unrecommend(ctx context.Context, id, userID string) error {
	uc.logger.Info("Withdrawing recommendation", zap.String("professional_id", id), zap.String("user_id", userID))

	if userID == "" {
		return fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}

	if err := uc.professionals.RemoveRecommendation(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		uc.logger.Error("Failed to remove recommendation", zap.Error(err))
		return fmt.Errorf("%w: failed to withdraw recommendation: %v", domain.ErrRepository, err)
	}
	return nil
}

// ListRecommendedBy returns the entries a user has recommended.
func (uc *ProfessionalUsecase) ListRecommendedBy(ctx context.Context, userID string) ([]*domain.Professional, error) {
	uc.logger.Debug("Listing professionals recommended by user", zap.String("user_id", userID))

	if userID == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}

	professionals, err := uc.professionals.ListRecommendedBy(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list recommended professionals", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to list recommendations: %v", domain.ErrRepository, err)
	}
	for _, p := range professionals {
		if !p.Stats.ShowRating {
			p.Stats.AverageRating = 0
		}
	}
	return professionals, nil
}
