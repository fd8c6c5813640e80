package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the usecase tests. They mirror the
// MongoDB adapters' observable behavior: ID-ordered listings, capped
// exclusion sets, set-semantics for friends and recommenders.

type fakeRatingRepo struct {
	ratings map[string]map[string]*domain.Rating // professionalID -> userID -> rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]map[string]*domain.Rating)}
}

func (f *fakeRatingRepo) Upsert(_ context.Context, professionalID, userID string, score int32) error {
	byUser, ok := f.ratings[professionalID]
	if !ok {
		byUser = make(map[string]*domain.Rating)
		f.ratings[professionalID] = byUser
	}
	now := time.Now().UTC()
	if existing, ok := byUser[userID]; ok {
		existing.Score = score
		existing.UpdatedAt = now
		return nil
	}
	byUser[userID] = &domain.Rating{
		ID:             primitive.NewObjectID(),
		ProfessionalID: professionalID,
		UserID:         userID,
		Score:          score,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

func (f *fakeRatingRepo) FindByProfessionalAndUser(_ context.Context, professionalID, userID string) (*domain.Rating, error) {
	if rating, ok := f.ratings[professionalID][userID]; ok {
		copied := *rating
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRatingRepo) ListScoresByProfessional(_ context.Context, professionalID string) ([]int32, error) {
	byUser := f.ratings[professionalID]
	scores := make([]int32, 0, len(byUser))
	for _, rating := range byUser {
		scores = append(scores, rating.Score)
	}
	return scores, nil
}

type fakeProfessionalRepo struct {
	professionals map[string]*domain.Professional
}

func newFakeProfessionalRepo() *fakeProfessionalRepo {
	return &fakeProfessionalRepo{professionals: make(map[string]*domain.Professional)}
}

func (f *fakeProfessionalRepo) Create(_ context.Context, p *domain.Professional) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	stored := *p
	f.professionals[p.ID] = &stored
	return nil
}

func (f *fakeProfessionalRepo) GetByID(_ context.Context, id string) (*domain.Professional, error) {
	p, ok := f.professionals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfessionalRepo) Update(_ context.Context, id string, update domain.ProfessionalUpdate) error {
	p, ok := f.professionals[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.Specialties != nil {
		p.Specialties = *update.Specialties
	}
	if update.City != nil {
		p.City = *update.City
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProfessionalRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.professionals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.professionals, id)
	return nil
}

func (f *fakeProfessionalRepo) DeleteByUserID(_ context.Context, userID string) error {
	for id, p := range f.professionals {
		if p.UserID == userID {
			delete(f.professionals, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeProfessionalRepo) UpdateRatingStats(_ context.Context, id string, stats domain.RatingStats) error {
	p, ok := f.professionals[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stats = stats
	return nil
}

func (f *fakeProfessionalRepo) FilterByMinimumRating(_ context.Context, min float64) ([]string, error) {
	matched := make([]*domain.Professional, 0)
	for _, p := range f.professionals {
		if p.Stats.ShowRating && p.Stats.AverageRating >= min {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Stats.AverageRating != matched[j].Stats.AverageRating {
			return matched[i].Stats.AverageRating > matched[j].Stats.AverageRating
		}
		return matched[i].ID < matched[j].ID
	})
	ids := make([]string, len(matched))
	for i, p := range matched {
		ids[i] = p.ID
	}
	return ids, nil
}

func (f *fakeProfessionalRepo) ListAfter(_ context.Context, cursor domain.Cursor, limit int64) ([]*domain.Professional, error) {
	ordered := make([]*domain.Professional, 0, len(f.professionals))
	for _, p := range f.professionals {
		if cursor != "" && p.ID <= string(cursor) {
			continue
		}
		copied := *p
		ordered = append(ordered, &copied)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	if int64(len(ordered)) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

func (f *fakeProfessionalRepo) AddRecommendation(_ context.Context, id, userID string) error {
	p, ok := f.professionals[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range p.RecommendedBy {
		if existing == userID {
			return nil
		}
	}
	p.RecommendedBy = append(p.RecommendedBy, userID)
	p.RecommendationCount++
	return nil
}

func (f *fakeProfessionalRepo) RemoveRecommendation(_ context.Context, id, userID string) error {
	p, ok := f.professionals[id]
	if !ok {
		return domain.ErrNotFound
	}
	for i, existing := range p.RecommendedBy {
		if existing == userID {
			p.RecommendedBy = append(p.RecommendedBy[:i], p.RecommendedBy[i+1:]...)
			p.RecommendationCount--
			return nil
		}
	}
	return nil
}

func (f *fakeProfessionalRepo) ListRecommendedBy(_ context.Context, userID string) ([]*domain.Professional, error) {
	out := make([]*domain.Professional, 0)
	for _, p := range f.professionals {
		for _, recommender := range p.RecommendedBy {
			if recommender == userID {
				copied := *p
				out = append(out, &copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	copied.Friends = append([]string(nil), u.Friends...)
	copied.Favorites = append([]string(nil), u.Favorites...)
	return &copied, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id string, update domain.UserProfileUpdate) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	if update.ProfessionalProfile != nil {
		u.ProfessionalProfile = *update.ProfessionalProfile
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeUserRepo) SetPhotoURL(_ context.Context, id, url string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PhotoURL = url
	return nil
}

func addToSet(set []string, value string) []string {
	for _, existing := range set {
		if existing == value {
			return set
		}
	}
	return append(set, value)
}

func removeFromSet(set []string, value string) []string {
	for i, existing := range set {
		if existing == value {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}

func (f *fakeUserRepo) AddFriendship(_ context.Context, userID, friendID string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	friend, ok := f.users[friendID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, friendID)
	}
	user.Friends = addToSet(user.Friends, friendID)
	friend.Friends = addToSet(friend.Friends, userID)
	return nil
}

func (f *fakeUserRepo) RemoveFriendship(_ context.Context, userID, friendID string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	friend, ok := f.users[friendID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, friendID)
	}
	user.Friends = removeFromSet(user.Friends, friendID)
	friend.Friends = removeFromSet(friend.Friends, userID)
	return nil
}

func (f *fakeUserRepo) AddFavorite(_ context.Context, userID, professionalID string) error {
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Favorites = addToSet(u.Favorites, professionalID)
	return nil
}

func (f *fakeUserRepo) RemoveFavorite(_ context.Context, userID, professionalID string) error {
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Favorites = removeFromSet(u.Favorites, professionalID)
	return nil
}

func (f *fakeUserRepo) ListAfter(_ context.Context, cursor domain.Cursor, limit int64, excludeIDs []string) ([]*domain.User, error) {
	if len(excludeIDs) > domain.MaxExclusionPerQuery {
		return nil, fmt.Errorf("%w: exclusion set of %d exceeds the per-query limit of %d",
			domain.ErrInvalidInput, len(excludeIDs), domain.MaxExclusionPerQuery)
	}
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	ordered := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		if cursor != "" && u.ID <= string(cursor) {
			continue
		}
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		copied := *u
		ordered = append(ordered, &copied)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	if int64(len(ordered)) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

type publishedEvent struct {
	Subject string
	Data    interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{Subject: subject, Data: data})
	return nil
}

func (f *fakePublisher) subjects() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Subject
	}
	return out
}

type fakePhotoStorage struct {
	objects map[string][]byte
	counter int
	err     error
}

func newFakePhotoStorage() *fakePhotoStorage {
	return &fakePhotoStorage{objects: make(map[string][]byte)}
}

func (f *fakePhotoStorage) Upload(_ context.Context, fileName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.counter++
	url := fmt.Sprintf("http://storage.local/profile-photos/photos/%d-%s", f.counter, fileName)
	f.objects[url] = data
	return url, nil
}

func (f *fakePhotoStorage) Remove(_ context.Context, fileURL string) error {
	delete(f.objects, fileURL)
	return nil
}
