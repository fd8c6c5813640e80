package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// DirectoryUsecase implements the paginated listing surfaces: friend
// suggestions and the professional directory.
type DirectoryUsecase struct {
	users         domain.UserRepository
	professionals domain.ProfessionalRepository
	logger        *logger.Logger
}

// NewDirectoryUsecase creates a new DirectoryUsecase.
func NewDirectoryUsecase(users domain.UserRepository, professionals domain.ProfessionalRepository, log *logger.Logger) *DirectoryUsecase {
	return &DirectoryUsecase{
		users:         users,
		professionals: professionals,
		logger:        log.Named("DirectoryUsecase"),
	}
}

func normalizePageSize(pageSize int32) int64 {
	if pageSize < 1 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return int64(pageSize)
}

// ListSuggestions returns a page of users who could be suggested as friends:
// everyone except the requesting user and their existing friends, in stable
// ID order.
//
// The store can only exclude MaxExclusionPerQuery IDs per query, so the
// query carries the first slice of the exclusion set and the rest is
// filtered here, fetching further batches until the page fills or the
// collection is exhausted. No candidate is ever silently dropped however
// large the friend list grows.
//
// The returned cursor points at the last item of the page. Excluded users
// scanned past that point are re-scanned on the next call and filtered
// again, which keeps resumption free of skips and duplicates.
func (uc *DirectoryUsecase) ListSuggestions(ctx context.Context, userID string, pageSize int32, cursor domain.Cursor) (*domain.UserPage, error) {
	uc.logger.Debug("Listing friend suggestions",
		zap.String("user_id", userID),
		zap.Int32("page_size", pageSize),
		zap.String("cursor", string(cursor)))

	if userID == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}
	limit := normalizePageSize(pageSize)

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load user: %v", domain.ErrRepository, err)
	}

	exclusions := make([]string, 0, len(user.Friends)+1)
	exclusions = append(exclusions, userID)
	exclusions = append(exclusions, user.Friends...)

	excluded := make(map[string]struct{}, len(exclusions))
	for _, id := range exclusions {
		excluded[id] = struct{}{}
	}

	// The query-side slice is a fixed prefix of the exclusion set, so every
	// batch is filtered against the same predicate and resumption stays
	// deterministic.
	queryExclusions := exclusions
	if len(queryExclusions) > domain.MaxExclusionPerQuery {
		queryExclusions = queryExclusions[:domain.MaxExclusionPerQuery]
	}

	items := make([]*domain.User, 0, limit)
	scanCursor := cursor
	for {
		batch, err := uc.users.ListAfter(ctx, scanCursor, limit, queryExclusions)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return nil, err
			}
			uc.logger.Error("Failed to list suggestion candidates", zap.Error(err))
			return nil, fmt.Errorf("%w: failed to list candidates: %v", domain.ErrRepository, err)
		}
		if len(batch) == 0 {
			break
		}

		for _, candidate := range batch {
			if _, skip := excluded[candidate.ID]; skip {
				continue
			}
			items = append(items, candidate)
			if int64(len(items)) == limit {
				break
			}
		}
		if int64(len(items)) == limit {
			break
		}
		if int64(len(batch)) < limit {
			// Short batch means the scan reached the end of the collection.
			break
		}
		scanCursor = domain.Cursor(batch[len(batch)-1].ID)
	}

	page := &domain.UserPage{Items: items}
	if len(items) > 0 {
		page.NextCursor = domain.Cursor(items[len(items)-1].ID)
		page.HasMore = int64(len(items)) == limit
	}
	uc.logger.Debug("Friend suggestions listed",
		zap.String("user_id", userID),
		zap.Int("returned", len(items)),
		zap.Bool("has_more", page.HasMore))
	return page, nil
}

// ListProfessionals returns a page of directory entries in stable ID order.
func (uc *DirectoryUsecase) ListProfessionals(ctx context.Context, pageSize int32, cursor domain.Cursor) (*domain.ProfessionalPage, error) {
	uc.logger.Debug("Listing professionals",
		zap.Int32("page_size", pageSize),
		zap.String("cursor", string(cursor)))

	limit := normalizePageSize(pageSize)
	items, err := uc.professionals.ListAfter(ctx, cursor, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		uc.logger.Error("Failed to list professionals", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to list professionals: %v", domain.ErrRepository, err)
	}

	page := &domain.ProfessionalPage{Items: items}
	if len(items) > 0 {
		page.NextCursor = domain.Cursor(items[len(items)-1].ID)
		page.HasMore = int64(len(items)) == limit
	}
	return page, nil
}
