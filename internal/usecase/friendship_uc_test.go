package usecase

import (
	"context"
	"testing"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendshipFixture(t *testing.T) (*FriendshipUsecase, *fakeUserRepo, *fakePublisher) {
	t.Helper()
	users := newFakeUserRepo()
	publisher := &fakePublisher{}
	uc := NewFriendshipUsecase(users, publisher, logger.NewLogger())
	return uc, users, publisher
}

func seedUser(t *testing.T, repo *fakeUserRepo, id string) {
	t.Helper()
	u, err := domain.NewUser(id, "User "+id, "", domain.Address{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
}

func TestFriendshipUsecase_AddFriend_Symmetric(t *testing.T) {
	uc, users, publisher := newFriendshipFixture(t)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")
	ctx := context.Background()

	require.NoError(t, uc.AddFriend(ctx, "alice", "bob"))

	alice, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	bob, err := users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Contains(t, alice.Friends, "bob")
	assert.Contains(t, bob.Friends, "alice")
	assert.Equal(t, []string{SubjectFriendshipAdded}, publisher.subjects())
}

func TestFriendshipUsecase_AddFriend_SelfRejected(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")

	err := uc.AddFriend(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFriendshipUsecase_AddFriend_Idempotent(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")
	ctx := context.Background()

	require.NoError(t, uc.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, uc.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, uc.AddFriend(ctx, "bob", "alice"))

	alice, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, alice.Friends)
}

func TestFriendshipUsecase_AddFriend_UnknownUser(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")

	err := uc.AddFriend(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFriendshipUsecase_RemoveFriend_Reversible(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")
	ctx := context.Background()

	require.NoError(t, uc.AddFriend(ctx, "alice", "bob"))
	// Removal initiated by the other side must clear both sets.
	require.NoError(t, uc.RemoveFriend(ctx, "bob", "alice"))

	alice, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	bob, err := users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, alice.Friends)
	assert.Empty(t, bob.Friends)
}

func TestFriendshipUsecase_RemoveFriend_AbsentSucceeds(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")

	assert.NoError(t, uc.RemoveFriend(context.Background(), "alice", "bob"))
}

func TestFriendshipUsecase_ListFriends_SkipsMissingProfiles(t *testing.T) {
	uc, users, _ := newFriendshipFixture(t)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")
	seedUser(t, users, "carol")
	ctx := context.Background()

	require.NoError(t, uc.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, uc.AddFriend(ctx, "alice", "carol"))

	// A dangling friend ID must not fail the whole listing.
	delete(users.users, "carol")

	friends, err := uc.ListFriends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].ID)
}
