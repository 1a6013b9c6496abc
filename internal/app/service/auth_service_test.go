package service

import (
	"context"
	"testing"
	"time"

	"forum_board/internal/common"
	"forum_board/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	tokens := security.NewTokenService("HS256", []byte("test-secret"), 30*time.Minute, security.NewMemoryRevocationStore())
	return NewAuthService(userRepo, tokens), userRepo
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	user, err := svc.Register(ctx, RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.HashedPassword, "hash must not leak out of the service")

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "x-pass"})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Username: "bob"})
		assert.ErrorIs(t, err, common.ErrBadRequest)
	})

	t.Run("username too short", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Username: "b", Email: "b@example.com", Password: "x-pass"})
		assert.ErrorIs(t, err, common.ErrBadRequest)
	})

	t.Run("password mismatch", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			Username: "bob", Email: "b@example.com",
			Password: "one", ConfirmPassword: "two",
		})
		assert.ErrorIs(t, err, common.ErrBadRequest)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, userRepo := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{LoginField: "alice@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("by username", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "s3cret-pass"})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "nope"})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{LoginField: "mallory", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, common.ErrUnauthorized, "unknown users get the same error as bad passwords")
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, userRepo.SoftDelete(ctx, registered.ID))
		_, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	svc, userRepo := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("subject gone", func(t *testing.T) {
		delete(userRepo.users, registered.ID)
		_, err := svc.CurrentUser(ctx, resp.AccessToken)
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))

	_, err = svc.CurrentUser(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)

	// Logging out twice is fine.
	assert.NoError(t, svc.Logout(ctx, resp.AccessToken))

	assert.ErrorIs(t, svc.Logout(ctx, ""), common.ErrUnauthorized)
}
