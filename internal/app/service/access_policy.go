package service

import (
	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

// DecideAccess is the single allow/deny decision for category access. It is
// a pure function of the principal, the category, the principal's grant
// level, and the attempted action, checked in priority order:
//
//  1. admins may do anything
//  2. an anonymous principal may only read public categories; every other
//     anonymous attempt is unauthorized
//  3. a locked category rejects writes regardless of grants
//  4. a private category requires a READ grant to read
//  5. a private category requires a WRITE grant to write
//  6. a public category is readable by anyone, but writing still
//     requires an explicit WRITE grant
//
// Category existence is the caller's problem: this function assumes
// category is non-nil.
func DecideAccess(principal *model.User, category *model.Category, level model.AccessLevel, action model.AccessAction) error {
	if principal != nil && principal.IsAdmin {
		return nil
	}

	if principal == nil {
		if action == model.ActionRead && !category.IsPrivate {
			return nil
		}
		return common.ErrUnauthorized
	}

	if action == model.ActionWrite && category.IsLocked {
		return common.Errorf("category %q is locked: %w", category.Name, common.ErrForbidden)
	}

	switch action {
	case model.ActionRead:
		if !category.IsPrivate || level >= model.LevelRead {
			return nil
		}
	case model.ActionWrite:
		if level >= model.LevelWrite {
			return nil
		}
	}
	return common.Errorf("you do not have permission to access this resource: %w", common.ErrForbidden)
}
