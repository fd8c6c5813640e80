package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryFixture(t *testing.T) (*DirectoryUsecase, *fakeUserRepo, *fakeProfessionalRepo) {
	t.Helper()
	users := newFakeUserRepo()
	professionals := newFakeProfessionalRepo()
	uc := NewDirectoryUsecase(users, professionals, logger.NewLogger())
	return uc, users, professionals
}

func seedUsers(t *testing.T, repo *fakeUserRepo, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("user-%03d", i)
		seedUser(t, repo, id)
		ids = append(ids, id)
	}
	return ids
}

func TestDirectoryUsecase_ListSuggestions_ExcludesSelfAndFriends(t *testing.T) {
	uc, users, _ := newDirectoryFixture(t)
	ids := seedUsers(t, users, 30)
	ctx := context.Background()

	// More friends than the store can exclude in one query: the overflow is
	// filtered in the usecase.
	self := ids[0]
	friends := ids[1:16]
	selfDoc := users.users[self]
	selfDoc.Friends = append([]string(nil), friends...)

	page, err := uc.ListSuggestions(ctx, self, 100, "")
	require.NoError(t, err)

	require.Len(t, page.Items, len(ids)-1-len(friends))
	seen := make(map[string]struct{})
	for _, item := range page.Items {
		assert.NotEqual(t, self, item.ID, "the requesting user must never be suggested")
		assert.NotContains(t, friends, item.ID, "existing friends must never be suggested")
		_, dup := seen[item.ID]
		assert.False(t, dup, "duplicate suggestion %s", item.ID)
		seen[item.ID] = struct{}{}
	}
	assert.False(t, page.HasMore)
}

func TestDirectoryUsecase_ListSuggestions_PaginationIsStable(t *testing.T) {
	uc, users, _ := newDirectoryFixture(t)
	ids := seedUsers(t, users, 25)
	ctx := context.Background()

	self := ids[0]
	// Spread excluded users across the ID range so pages must be refilled.
	friends := []string{ids[3], ids[7], ids[11], ids[12], ids[13], ids[19], ids[24],
		ids[1], ids[5], ids[9], ids[15], ids[21]}
	users.users[self].Friends = append([]string(nil), friends...)

	expected := len(ids) - 1 - len(friends)

	collected := make([]string, 0, expected)
	cursor := domain.Cursor("")
	for i := 0; i < 20; i++ { // generous bound, the walk must terminate well before
		page, err := uc.ListSuggestions(ctx, self, 4, cursor)
		require.NoError(t, err)
		for _, item := range page.Items {
			collected = append(collected, item.ID)
		}
		if len(page.Items) == 0 || !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, collected, expected, "walking all pages must visit every candidate exactly once")
	for i := 1; i < len(collected); i++ {
		assert.Less(t, collected[i-1], collected[i], "suggestions must arrive in stable ID order")
	}
}

func TestDirectoryUsecase_ListSuggestions_TolerateEmptyFinalPage(t *testing.T) {
	uc, users, _ := newDirectoryFixture(t)
	ids := seedUsers(t, users, 9)
	ctx := context.Background()

	// Page size divides the candidate count evenly: the last full page
	// reports HasMore and the follow-up call comes back empty.
	page, err := uc.ListSuggestions(ctx, ids[0], 4, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	require.True(t, page.HasMore)

	page, err = uc.ListSuggestions(ctx, ids[0], 4, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	require.True(t, page.HasMore)

	page, err = uc.ListSuggestions(ctx, ids[0], 4, page.NextCursor)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestDirectoryUsecase_ListSuggestions_UnknownUser(t *testing.T) {
	uc, _, _ := newDirectoryFixture(t)

	_, err := uc.ListSuggestions(context.Background(), "ghost", 10, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectoryUsecase_ListSuggestions_PageSizeNormalized(t *testing.T) {
	uc, users, _ := newDirectoryFixture(t)
	ids := seedUsers(t, users, 15)

	page, err := uc.ListSuggestions(context.Background(), ids[0], 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, defaultPageSize)
}

func TestDirectoryUsecase_ListProfessionals_Pagination(t *testing.T) {
	uc, _, professionals := newDirectoryFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		seedProfessional(t, professionals, fmt.Sprintf("prof-%02d", i))
	}

	page, err := uc.ListProfessionals(ctx, 3, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, "prof-00", page.Items[0].ID)

	page, err = uc.ListProfessionals(ctx, 3, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "prof-03", page.Items[0].ID)

	page, err = uc.ListProfessionals(ctx, 3, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "prof-06", page.Items[0].ID)
	assert.False(t, page.HasMore)
}
