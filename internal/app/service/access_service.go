package service

import (
	"context"

	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"
)

// AccessService loads the state DecideAccess needs and applies it. All
// checks are read-only; the only mutations in the permission model are the
// explicit grant/revoke operations on CategoryService.
type AccessService struct {
	categoryRepo   repository.CategoryRepository
	permissionRepo repository.PermissionRepository
}

func NewAccessService(
	categoryRepo repository.CategoryRepository,
	permissionRepo repository.PermissionRepository,
) *AccessService {
	return &AccessService{
		categoryRepo:   categoryRepo,
		permissionRepo: permissionRepo,
	}
}

// Require answers whether principal may perform action on the category,
// returning ErrNotFound for a missing category and ErrForbidden /
// ErrUnauthorized for denials. On success it returns the loaded category so
// callers do not fetch it twice.
func (s *AccessService) Require(ctx context.Context, principal *model.User, categoryID string, action model.AccessAction) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	level := model.LevelNone
	if principal != nil && !principal.IsAdmin {
		level, err = s.permissionRepo.AccessLevel(ctx, principal.ID, categoryID)
		if err != nil {
			return nil, err
		}
	}

	if err := DecideAccess(principal, category, level, action); err != nil {
		return nil, err
	}
	return category, nil
}
