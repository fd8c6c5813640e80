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

// FriendshipUsecase implements the business logic for the symmetric
// friendship relation.
type FriendshipUsecase struct {
	users     domain.UserRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewFriendshipUsecase creates a new FriendshipUsecase.
func NewFriendshipUsecase(users domain.UserRepository, pub EventPublisher, log *logger.Logger) *FriendshipUsecase {
	return &FriendshipUsecase{
		users:     users,
		publisher: pub,
		logger:    log.Named("FriendshipUsecase"),
	}
}

func validateFriendshipPair(userID, friendID string) error {
	if userID == "" || friendID == "" {
		return fmt.Errorf("%w: both user IDs are required", domain.ErrInvalidInput)
	}
	if userID == friendID {
		return fmt.Errorf("%w: a user cannot befriend themselves", domain.ErrInvalidInput)
	}
	return nil
}

// AddFriend creates the friendship between the two users. Both sides are
// written transactionally, so the relation is symmetric in every observable
// state. Adding an existing friendship succeeds without duplicating entries.
func (uc *FriendshipUsecase) AddFriend(ctx context.Context, userID, friendID string) error {
	uc.logger.Info("Adding friend", zap.String("user_id", userID), zap.String("friend_id", friendID))

	if err := validateFriendshipPair(userID, friendID); err != nil {
		return err
	}

	if err := uc.users.AddFriendship(ctx, userID, friendID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to add friendship", zap.Error(err))
		return fmt.Errorf("%w: failed to add friendship: %v", domain.ErrRepository, err)
	}

	eventData := map[string]interface{}{
		"user_id":   userID,
		"friend_id": friendID,
		"added_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectFriendshipAdded, eventData); err != nil {
		uc.logger.Warn("Failed to publish friendship.added event", zap.Error(err))
	}

	uc.logger.Info("Friend added successfully", zap.String("user_id", userID), zap.String("friend_id", friendID))
	return nil
}

// RemoveFriend removes the friendship from both sides transactionally.
// Removing an absent friendship succeeds, so the operation can be retried
// safely.
func (uc *FriendshipUsecase) RemoveFriend(ctx context.Context, userID, friendID string) error {
	uc.logger.Info("Removing friend", zap.String("user_id", userID), zap.String("friend_id", friendID))

	if err := validateFriendshipPair(userID, friendID); err != nil {
		return err
	}

	if err := uc.users.RemoveFriendship(ctx, userID, friendID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to remove friendship", zap.Error(err))
		return fmt.Errorf("%w: failed to remove friendship: %v", domain.ErrRepository, err)
	}

	eventData := map[string]interface{}{
		"user_id":    userID,
		"friend_id":  friendID,
		"removed_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectFriendshipRemoved, eventData); err != nil {
		uc.logger.Warn("Failed to publish friendship.removed event", zap.Error(err))
	}

	uc.logger.Info("Friend removed successfully", zap.String("user_id", userID), zap.String("friend_id", friendID))
	return nil
}

// ListFriends returns the hydrated profiles of the user's friends. Friend IDs
// whose profile no longer exists are skipped rather than failing the whole
// listing.
func (uc *FriendshipUsecase) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	uc.logger.Debug("Listing friends", zap.String("user_id", userID))

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

	friends := make([]*domain.User, 0, len(user.Friends))
	for _, friendID := range user.Friends {
		friend, err := uc.users.GetByID(ctx, friendID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				uc.logger.Warn("Friend profile missing, skipping", zap.String("user_id", userID), zap.String("friend_id", friendID))
				continue
			}
			return nil, fmt.Errorf("%w: failed to load friend profile: %v", domain.ErrRepository, err)
		}
		friends = append(friends, friend)
	}
	return friends, nil
}
