package service

import (
	"context"
	"errors"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/common/security"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("username, email and password are required: %w", common.ErrBadRequest)
	}
	if len(req.Username) < 2 || len(req.Username) > 50 {
		return nil, common.Errorf("username must be between 2 and 50 characters: %w", common.ErrBadRequest)
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return nil, common.Errorf("passwords do not match: %w", common.ErrBadRequest)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.Errorf("login field and password are required: %w", common.ErrBadRequest)
	}

	// Try finding by email first, then by username.
	user, err := s.userRepo.FindByEmail(ctx, req.LoginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByUsername(ctx, req.LoginField)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.IsDeleted {
		return nil, common.ErrUnauthorized
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.tokens.Issue(security.Claims{
		Subject: user.Username,
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Logout revokes the presented token. Revoking twice is fine.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.Errorf("no token presented: %w", common.ErrUnauthorized)
	}
	return s.tokens.Revoke(ctx, token)
}

// CurrentUser resolves a bearer token to its user record. Verification
// failures propagate; deciding what to do with a soft-deleted user is left
// to the caller.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Token is signed and fresh but its subject is gone.
			return nil, common.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}
