package service

import (
	"context"
	"testing"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryFixture struct {
	svc            *CategoryService
	categoryRepo   *fakeCategoryRepo
	permissionRepo *fakePermissionRepo
	topicRepo      *fakeTopicRepo
	userRepo       *fakeUserRepo
	calls          *[]string
}

func newCategoryFixture() *categoryFixture {
	calls := &[]string{}
	categoryRepo := newFakeCategoryRepo(calls)
	permissionRepo := newFakePermissionRepo(calls)
	topicRepo := newFakeTopicRepo(calls)
	replyRepo := newFakeReplyRepo(calls)
	userRepo := newFakeUserRepo()
	access := NewAccessService(categoryRepo, permissionRepo)
	svc := NewCategoryService(categoryRepo, permissionRepo, topicRepo, replyRepo, userRepo, access, newStubDB())
	return &categoryFixture{
		svc:            svc,
		categoryRepo:   categoryRepo,
		permissionRepo: permissionRepo,
		topicRepo:      topicRepo,
		userRepo:       userRepo,
		calls:          calls,
	}
}

func TestCategoryService_CreateAndRename(t *testing.T) {
	ctx := context.Background()
	f := newCategoryFixture()

	category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "General Discussion"})
	require.NoError(t, err)
	assert.Equal(t, "general-discussion", category.Slug)

	_, err = f.svc.Create(ctx, CreateCategoryRequest{Name: "General Discussion"})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = f.svc.Create(ctx, CreateCategoryRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	other, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "Off Topic"})
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, other.ID, "General Discussion")
	assert.ErrorIs(t, err, common.ErrConflict, "renaming onto an existing name must be refused")

	renamed, err := f.svc.Rename(ctx, other.ID, "Lounge")
	require.NoError(t, err)
	assert.Equal(t, "Lounge", renamed.Name)
	assert.Equal(t, "lounge", renamed.Slug)
}

func TestCategoryService_ListHidesPrivateFromNonAdmins(t *testing.T) {
	ctx := context.Background()
	f := newCategoryFixture()

	_, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "Public"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateCategoryRequest{Name: "Secret", IsPrivate: true})
	require.NoError(t, err)

	categories, err := f.svc.List(ctx, nil, repository.CategoryFilter{})
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Public", categories[0].Name)

	admin := &model.User{ID: "admin", IsAdmin: true}
	categories, err = f.svc.List(ctx, admin, repository.CategoryFilter{})
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCategoryService_LockAndPrivacyToggles(t *testing.T) {
	ctx := context.Background()
	f := newCategoryFixture()

	category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "General"})
	require.NoError(t, err)

	msg, err := f.svc.LockUnlock(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "locked", msg)

	msg, err = f.svc.LockUnlock(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "unlocked", msg)

	msg, err = f.svc.PrivatiseUnprivatise(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "made private", msg)

	msg, err = f.svc.PrivatiseUnprivatise(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "made public", msg)

	_, err = f.svc.LockUnlock(ctx, "no-such-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryService_GrantAndRevokeAccess(t *testing.T) {
	ctx := context.Background()
	f := newCategoryFixture()

	category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "Staff", IsPrivate: true})
	require.NoError(t, err)
	user := &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	require.NoError(t, f.userRepo.Create(ctx, user))

	msg, err := f.svc.GrantAccess(ctx, category.ID, GrantAccessRequest{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "access granted", msg)

	// Repeating the grant upgrades in place instead of failing.
	msg, err = f.svc.GrantAccess(ctx, category.ID, GrantAccessRequest{UserID: user.ID, WriteAccess: true})
	require.NoError(t, err)
	assert.Equal(t, "access updated", msg)

	level, err := f.permissionRepo.AccessLevel(ctx, user.ID, category.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LevelWrite, level)

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.svc.GrantAccess(ctx, "no-such-id", GrantAccessRequest{UserID: user.ID})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.GrantAccess(ctx, category.ID, GrantAccessRequest{UserID: "no-such-user"})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	require.NoError(t, f.svc.RevokeAccess(ctx, category.ID, user.ID))

	level, err = f.permissionRepo.AccessLevel(ctx, user.ID, category.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LevelNone, level, "revoked users fall back to the default deny")

	assert.ErrorIs(t, f.svc.RevokeAccess(ctx, category.ID, user.ID), common.ErrNotFound,
		"revoking a grant that does not exist reports not found")
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses when topics remain", func(t *testing.T) {
		f := newCategoryFixture()
		category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "General"})
		require.NoError(t, err)
		f.categoryRepo.topics[category.ID] = true

		err = f.svc.Delete(ctx, category.ID, false)
		assert.ErrorIs(t, err, common.ErrConflict)

		_, err = f.categoryRepo.FindByID(ctx, category.ID)
		assert.NoError(t, err, "a refused delete must leave the category in place")
	})

	t.Run("cascades in dependency order", func(t *testing.T) {
		f := newCategoryFixture()
		category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "General"})
		require.NoError(t, err)
		f.categoryRepo.topics[category.ID] = true

		require.NoError(t, f.svc.Delete(ctx, category.ID, true))

		assert.Equal(t, []string{
			"permissions.DeleteByCategory",
			"topics.ClearBestReplies",
			"replies.DeleteByCategory",
			"topics.DeleteByCategory",
			"categories.Delete",
		}, *f.calls)

		_, err = f.categoryRepo.FindByID(ctx, category.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("empty category skips the topic cascade", func(t *testing.T) {
		f := newCategoryFixture()
		category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "Empty"})
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, category.ID, false))

		assert.Equal(t, []string{
			"permissions.DeleteByCategory",
			"categories.Delete",
		}, *f.calls)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newCategoryFixture()
		assert.ErrorIs(t, f.svc.Delete(ctx, "no-such-id", true), common.ErrNotFound)
	})
}

func TestCategoryService_Get(t *testing.T) {
	ctx := context.Background()
	f := newCategoryFixture()

	category, err := f.svc.Create(ctx, CreateCategoryRequest{Name: "Staff", IsPrivate: true})
	require.NoError(t, err)

	require.NoError(t, f.topicRepo.Create(ctx, &model.Topic{
		ID: "topic-1", Title: "Welcome", CategoryID: category.ID, CategoryName: category.Name,
	}))

	member := &model.User{ID: "user-1", Username: "alice"}

	_, err = f.svc.Get(ctx, member, category.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.permissionRepo.Upsert(ctx, &model.PermissionGrant{UserID: member.ID, CategoryID: category.ID})
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, member, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, detail.Category.ID)
	require.Len(t, detail.Topics, 1)
	assert.Equal(t, "Welcome", detail.Topics[0].Title)
}
