package service

import (
	"context"
	"database/sql"
	"errors"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

type CategoryService struct {
	categoryRepo   repository.CategoryRepository
	permissionRepo repository.PermissionRepository
	topicRepo      repository.TopicRepository
	replyRepo      repository.ReplyRepository
	userRepo       repository.UserRepository
	access         *AccessService
	db             *sql.DB // For transactions
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	permissionRepo repository.PermissionRepository,
	topicRepo repository.TopicRepository,
	replyRepo repository.ReplyRepository,
	userRepo repository.UserRepository,
	access *AccessService,
	db *sql.DB,
) *CategoryService {
	return &CategoryService{
		categoryRepo:   categoryRepo,
		permissionRepo: permissionRepo,
		topicRepo:      topicRepo,
		replyRepo:      replyRepo,
		userRepo:       userRepo,
		access:         access,
		db:             db,
	}
}

type CreateCategoryRequest struct {
	Name      string `json:"name"`
	IsLocked  bool   `json:"is_locked"`
	IsPrivate bool   `json:"is_private"`
}

type GrantAccessRequest struct {
	UserID      string `json:"user_id"`
	WriteAccess bool   `json:"write_access"`
}

// CategoryDetail is a category together with the topics visible inside it.
type CategoryDetail struct {
	Category *model.Category `json:"category"`
	Topics   []model.Topic   `json:"topics"`
}

func (s *CategoryService) List(ctx context.Context, principal *model.User, filter repository.CategoryFilter) ([]model.Category, error) {
	// Non-admins only see public categories in listings.
	filter.PublicOnly = principal == nil || !principal.IsAdmin
	return s.categoryRepo.List(ctx, filter)
}

func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	if req.Name == "" {
		return nil, common.Errorf("category name is required: %w", common.ErrBadRequest)
	}

	category := &model.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		IsLocked:  req.IsLocked,
		IsPrivate: req.IsPrivate,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Get returns the category and its topics, subject to the read gate:
// admins see everything, grant holders see private categories, everyone
// sees public ones.
func (s *CategoryService) Get(ctx context.Context, principal *model.User, categoryID string) (*CategoryDetail, error) {
	category, err := s.access.Require(ctx, principal, categoryID, model.ActionRead)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicRepo.List(ctx, repository.TopicFilter{
		CategoryName: category.Name,
		Limit:        100,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: category, Topics: topics}, nil
}

func (s *CategoryService) Rename(ctx context.Context, categoryID, newName string) (*model.Category, error) {
	if newName == "" {
		return nil, common.Errorf("new name has to be given: %w", common.ErrBadRequest)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByName(ctx, newName); err == nil {
		return nil, common.Errorf("category with that name already exists: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	newSlug := slug.Make(newName)
	if err := s.categoryRepo.UpdateName(ctx, categoryID, newName, newSlug); err != nil {
		return nil, err
	}
	category.Name = newName
	category.Slug = newSlug
	return category, nil
}

// LockUnlock flips the lock state and reports which way it went.
func (s *CategoryService) LockUnlock(ctx context.Context, categoryID string) (string, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return "", err
	}

	if err := s.categoryRepo.SetLocked(ctx, categoryID, !category.IsLocked); err != nil {
		return "", err
	}
	if category.IsLocked {
		return "unlocked", nil
	}
	return "locked", nil
}

// PrivatiseUnprivatise flips the privacy state and reports which way it
// went. Existing grants survive a flip to public; they become relevant
// again if the category is made private later.
func (s *CategoryService) PrivatiseUnprivatise(ctx context.Context, categoryID string) (string, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return "", err
	}

	if err := s.categoryRepo.SetPrivate(ctx, categoryID, !category.IsPrivate); err != nil {
		return "", err
	}
	if category.IsPrivate {
		return "made public", nil
	}
	return "made private", nil
}

// Delete removes a category. With deleteTopics false a category that still
// has topics is refused rather than silently orphaning rows. The cascade
// runs in dependency order inside one transaction: permission rows, then
// replies, then topics, then the category itself.
func (s *CategoryService) Delete(ctx context.Context, categoryID string, deleteTopics bool) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return err
	}

	hasTopics, err := s.categoryRepo.HasTopics(ctx, categoryID)
	if err != nil {
		return err
	}
	if hasTopics && !deleteTopics {
		return common.Errorf("category still has topics; pass delete_topics=true to remove them: %w", common.ErrConflict)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.permissionRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
		return err
	}
	if hasTopics {
		if err := s.topicRepo.ClearBestReplies(ctx, tx, categoryID); err != nil {
			return err
		}
		if err := s.replyRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
			return err
		}
		if err := s.topicRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
			return err
		}
	}
	if err := s.categoryRepo.Delete(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("category_id", categoryID).Bool("deleted_topics", hasTopics).Msg("category deleted")
	return nil
}

// GrantAccess upserts a permission grant. The returned message tells the
// caller whether a new grant was created or an existing one updated, so
// repeating the call is harmless.
func (s *CategoryService) GrantAccess(ctx context.Context, categoryID string, req GrantAccessRequest) (string, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return "", err
	}
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return "", err
	}

	created, err := s.permissionRepo.Upsert(ctx, &model.PermissionGrant{
		UserID:      req.UserID,
		CategoryID:  categoryID,
		WriteAccess: req.WriteAccess,
	})
	if err != nil {
		return "", err
	}
	if created {
		return "access granted", nil
	}
	return "access updated", nil
}

func (s *CategoryService) RevokeAccess(ctx context.Context, categoryID, userID string) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return err
	}
	return s.permissionRepo.Delete(ctx, userID, categoryID)
}

func (s *CategoryService) PrivilegedUsers(ctx context.Context, categoryID string) ([]model.PrivilegedUser, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.permissionRepo.ListPrivilegedUsers(ctx, categoryID)
}
