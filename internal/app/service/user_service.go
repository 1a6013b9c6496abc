package service

import (
	"context"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/common/security"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type UpdateProfileRequest struct {
	Email           *string `json:"email,omitempty"`
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
	ConfirmPassword *string `json:"confirm_password,omitempty"`
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, principal *model.User, req UpdateProfileRequest) (*model.User, error) {
	// Validate the password change up front so a bad request leaves the
	// profile untouched.
	var hashedPassword string
	if req.NewPassword != nil {
		if *req.NewPassword == "" {
			return nil, common.Errorf("new password must not be empty: %w", common.ErrBadRequest)
		}
		if req.ConfirmPassword == nil || *req.NewPassword != *req.ConfirmPassword {
			return nil, common.Errorf("passwords do not match: %w", common.ErrBadRequest)
		}
		var err error
		hashedPassword, err = security.HashPassword(*req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if req.Email != nil {
		principal.Email = *req.Email
	}
	if req.FirstName != nil {
		principal.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		principal.LastName = *req.LastName
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return nil, common.Errorf("bio must be at most 500 characters: %w", common.ErrBadRequest)
		}
		principal.Bio = *req.Bio
	}

	if err := s.userRepo.UpdateProfile(ctx, principal); err != nil {
		return nil, err
	}

	if hashedPassword != "" {
		if err := s.userRepo.UpdatePassword(ctx, principal.ID, hashedPassword); err != nil {
			return nil, err
		}
	}

	principal.HashedPassword = ""
	return principal, nil
}

// SoftDelete marks a user deleted. The row stays so authored topics and
// replies keep their attribution; the user just cannot log in anymore.
func (s *UserService) SoftDelete(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return common.Errorf("admin accounts cannot be deleted: %w", common.ErrForbidden)
	}
	return s.userRepo.SoftDelete(ctx, userID)
}
