package usecase

import (
	"context"
	"testing"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserUsecase, *fakeUserRepo, *fakeProfessionalRepo, *fakePhotoStorage) {
	t.Helper()
	users := newFakeUserRepo()
	professionals := newFakeProfessionalRepo()
	photos := newFakePhotoStorage()
	uc := NewUserUsecase(users, professionals, photos, logger.NewLogger())
	return uc, users, professionals, photos
}

func TestUserUsecase_CreateProfile(t *testing.T) {
	uc, _, _, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := uc.CreateProfile(ctx, "alice", "Alice Silva", "+55 81 99999-0000", domain.Address{City: "Recife", Country: "BR"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Empty(t, user.Friends)
	assert.Empty(t, user.Favorites)

	_, err = uc.CreateProfile(ctx, "", "Alice", "", domain.Address{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateProfile(ctx, "bob", "", "", domain.Address{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUsecase_UpdateProfile_MergesFields(t *testing.T) {
	uc, users, _, _ := newUserFixture(t)
	seedUser(t, users, "alice")
	ctx := context.Background()

	phone := "+55 81 98888-0000"
	require.NoError(t, uc.UpdateProfile(ctx, "alice", domain.UserProfileUpdate{Phone: &phone}))

	alice, err := uc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, phone, alice.Phone)
	assert.Equal(t, "User alice", alice.Name, "fields absent from the update must be left untouched")

	empty := ""
	err = uc.UpdateProfile(ctx, "alice", domain.UserProfileUpdate{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUsecase_UploadPhoto_ReplacesPrevious(t *testing.T) {
	uc, users, _, photos := newUserFixture(t)
	seedUser(t, users, "alice")
	ctx := context.Background()

	first, err := uc.UploadPhoto(ctx, "alice", "me.png", []byte("first"))
	require.NoError(t, err)
	second, err := uc.UploadPhoto(ctx, "alice", "me2.png", []byte("second"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	alice, err := uc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, second, alice.PhotoURL)

	// The replaced object is cleaned out of storage.
	assert.NotContains(t, photos.objects, first)
	assert.Contains(t, photos.objects, second)
}

func TestUserUsecase_UploadPhoto_Validation(t *testing.T) {
	uc, users, _, _ := newUserFixture(t)
	seedUser(t, users, "alice")
	ctx := context.Background()

	_, err := uc.UploadPhoto(ctx, "alice", "me.png", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UploadPhoto(ctx, "ghost", "me.png", []byte("data"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserUsecase_RemovePhoto(t *testing.T) {
	uc, users, _, photos := newUserFixture(t)
	seedUser(t, users, "alice")
	ctx := context.Background()

	url, err := uc.UploadPhoto(ctx, "alice", "me.png", []byte("data"))
	require.NoError(t, err)

	require.NoError(t, uc.RemovePhoto(ctx, "alice"))
	alice, err := uc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, alice.PhotoURL)
	assert.NotContains(t, photos.objects, url)

	// Removing with no photo set is a no-op.
	assert.NoError(t, uc.RemovePhoto(ctx, "alice"))
}

func TestUserUsecase_Favorites(t *testing.T) {
	uc, users, professionals, _ := newUserFixture(t)
	seedUser(t, users, "alice")
	seedProfessional(t, professionals, "p1")
	seedProfessional(t, professionals, "p2")
	ctx := context.Background()

	require.NoError(t, uc.AddFavorite(ctx, "alice", "p1"))
	require.NoError(t, uc.AddFavorite(ctx, "alice", "p1")) // repeated add, no duplicate
	require.NoError(t, uc.AddFavorite(ctx, "alice", "p2"))

	err := uc.AddFavorite(ctx, "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	favorites, err := uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	require.NoError(t, uc.RemoveFavorite(ctx, "alice", "p1"))
	require.NoError(t, uc.RemoveFavorite(ctx, "alice", "p1")) // absent removal succeeds

	favorites, err = uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "p2", favorites[0].ID)
}

func TestUserUsecase_ListFavorites_SkipsDeletedEntries(t *testing.T) {
	uc, users, professionals, _ := newUserFixture(t)
	seedUser(t, users, "alice")
	seedProfessional(t, professionals, "p1")
	seedProfessional(t, professionals, "p2")
	ctx := context.Background()

	require.NoError(t, uc.AddFavorite(ctx, "alice", "p1"))
	require.NoError(t, uc.AddFavorite(ctx, "alice", "p2"))
	require.NoError(t, professionals.Delete(ctx, "p1"))

	favorites, err := uc.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "p2", favorites[0].ID)
}
