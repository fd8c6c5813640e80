package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"go.uber.org/zap"
)

// UserUsecase implements the business logic for user profiles, profile
// photos, and favorites.
type UserUsecase struct {
	users         domain.UserRepository
	professionals domain.ProfessionalRepository
	photos        PhotoStorage
	logger        *logger.Logger
}

// NewUserUsecase creates a new UserUsecase.
func NewUserUsecase(users domain.UserRepository, professionals domain.ProfessionalRepository, photos PhotoStorage, log *logger.Logger) *UserUsecase {
	return &UserUsecase{
		users:         users,
		professionals: professionals,
		photos:        photos,
		logger:        log.Named("UserUsecase"),
	}
}

// CreateProfile writes the profile for an authenticated subject. Repeating
// the call replaces the document, so an interrupted signup can be retried.
func (uc *UserUsecase) CreateProfile(ctx context.Context, id, name, phone string, address domain.Address) (*domain.User, error) {
	uc.logger.Info("Creating user profile", zap.String("user_id", id), zap.String("name", name))

	user, err := domain.NewUser(id, name, phone, address)
	if err != nil {
		uc.logger.Error("Failed to create new domain user instance", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		uc.logger.Error("Failed to save user profile to repository", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to create profile: %v", domain.ErrRepository, err)
	}

	uc.logger.Info("User profile created successfully", zap.String("user_id", id))
	return user, nil
}

// GetProfile retrieves a user profile by ID.
func (uc *UserUsecase) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	uc.logger.Debug("Getting user profile", zap.String("user_id", id))

	if id == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get profile: %v", domain.ErrRepository, err)
	}
	return user, nil
}

// UpdateProfile applies a merge update to the profile; nil fields are left
// untouched.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, id string, update domain.UserProfileUpdate) error {
	uc.logger.Info("Updating user profile", zap.String("user_id", id))

	if id == "" {
		return fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}
	if update.Name != nil && *update.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}

	if err := uc.users.Update(ctx, id, update); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to update user profile", zap.Error(err))
		return fmt.Errorf("%w: failed to update profile: %v", domain.ErrRepository, err)
	}
	return nil
}

// UploadPhoto stores a new profile photo and records its URL. A previous
// photo is removed from storage best effort; an orphaned object never fails
// the upload.
func (uc *UserUsecase) UploadPhoto(ctx context.Context, userID, fileName string, data []byte) (string, error) {
	uc.logger.Info("Uploading profile photo",
		zap.String("user_id", userID),
		zap.String("file_name", fileName),
		zap.Int("size_bytes", len(data)))

	if userID == "" {
		return "", fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo data cannot be empty", domain.ErrInvalidInput)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: failed to load user: %v", domain.ErrRepository, err)
	}

	url, err := uc.photos.Upload(ctx, fileName, data)
	if err != nil {
		uc.logger.Error("Failed to upload photo to storage", zap.Error(err), zap.String("user_id", userID))
		return "", fmt.Errorf("%w: failed to upload photo: %v", domain.ErrStorage, err)
	}

	if err := uc.users.SetPhotoURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("%w: failed to record photo URL: %v", domain.ErrRepository, err)
	}

	if user.PhotoURL != "" && user.PhotoURL != url {
		if err := uc.photos.Remove(ctx, user.PhotoURL); err != nil {
			uc.logger.Warn("Failed to remove previous profile photo", zap.Error(err), zap.String("user_id", userID))
		}
	}

	uc.logger.Info("Profile photo uploaded successfully", zap.String("user_id", userID))
	return url, nil
}

// RemovePhoto deletes the profile photo and clears its URL. Removing when no
// photo is set succeeds.
func (uc *UserUsecase) RemovePhoto(ctx context.Context, userID string) error {
	uc.logger.Info("Removing profile photo", zap.String("user_id", userID))

	if userID == "" {
		return fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to load user: %v", domain.ErrRepository, err)
	}
	if user.PhotoURL == "" {
		return nil
	}

	if err := uc.photos.Remove(ctx, user.PhotoURL); err != nil {
		uc.logger.Warn("Failed to remove photo from storage", zap.Error(err), zap.String("user_id", userID))
	}

	if err := uc.users.SetPhotoURL(ctx, userID, ""); err != nil {
		return fmt.Errorf("%w: failed to clear photo URL: %v", domain.ErrRepository, err)
	}
	return nil
}

// AddFavorite saves the professional in the user's favorites.
func (uc *UserUsecase) AddFavorite(ctx context.Context, userID, professionalID string) error {
	uc.logger.Info("Adding favorite", zap.String("user_id", userID), zap.String("professional_id", professionalID))

	if userID == "" || professionalID == "" {
		return fmt.Errorf("%w: userID and professionalID are required", domain.ErrInvalidInput)
	}

	if _, err := uc.professionals.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: failed to load professional: %v", domain.ErrRepository, err)
	}

	if err := uc.users.AddFavorite(ctx, userID, professionalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to add favorite", zap.Error(err))
		return fmt.Errorf("%w: failed to add favorite: %v", domain.ErrRepository, err)
	}
	return nil
}

// RemoveFavorite removes the professional from the user's favorites.
// Removing an absent favorite succeeds.
func (uc *UserUsecase) RemoveFavorite(ctx context.Context, userID, professionalID string) error {
	uc.logger.Info("Removing favorite", zap.String("user_id", userID), zap.String("professional_id", professionalID))

	if userID == "" || professionalID == "" {
		return fmt.Errorf("%w: userID and professionalID are required", domain.ErrInvalidInput)
	}

	if err := uc.users.RemoveFavorite(ctx, userID, professionalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to remove favorite", zap.Error(err))
		return fmt.Errorf("%w: failed to remove favorite: %v", domain.ErrRepository, err)
	}
	return nil
}

// ListFavorites returns the hydrated entries the user has favorited.
// Favorites whose entry no longer exists are skipped.
func (uc *UserUsecase) ListFavorites(ctx context.Context, userID string) ([]*domain.Professional, error) {
	uc.logger.Debug("Listing favorites", zap.String("user_id", userID))

	if userID == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load user: %v", domain.ErrRepository, err)
	}

	favorites := make([]*domain.Professional, 0, len(user.Favorites))
	for _, professionalID := range user.Favorites {
		professional, err := uc.professionals.GetByID(ctx, professionalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
				uc.logger.Warn("Favorite entry missing, skipping",
					zap.String("user_id", userID),
					zap.String("professional_id", professionalID))
				continue
			}
			return nil, fmt.Errorf("%w: failed to load favorite: %v", domain.ErrRepository, err)
		}
		if !professional.Stats.ShowRating {
			professional.Stats.AverageRating = 0
		}
		favorites = append(favorites, professional)
	}
	return favorites, nil
}
