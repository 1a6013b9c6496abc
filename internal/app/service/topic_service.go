package service

import (
	"context"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/google/uuid"
)

type TopicService struct {
	topicRepo repository.TopicRepository
	replyRepo repository.ReplyRepository
	access    *AccessService
}

func NewTopicService(
	topicRepo repository.TopicRepository,
	replyRepo repository.ReplyRepository,
	access *AccessService,
) *TopicService {
	return &TopicService{
		topicRepo: topicRepo,
		replyRepo: replyRepo,
		access:    access,
	}
}

type CreateTopicRequest struct {
	Title      string `json:"title"`
	CategoryID string `json:"category_id"`
}

func (s *TopicService) List(ctx context.Context, principal *model.User, filter repository.TopicFilter) ([]model.Topic, error) {
	// Topic listings only surface public categories for non-admins;
	// private content is reached through the category detail, which
	// checks grants.
	filter.PublicOnly = principal == nil || !principal.IsAdmin
	return s.topicRepo.List(ctx, filter)
}

// Get returns a topic with its replies. Reading is gated on the topic's
// category.
func (s *TopicService) Get(ctx context.Context, principal *model.User, topicID string) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Require(ctx, principal, topic.CategoryID, model.ActionRead); err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	topic.Replies = replies
	return topic, nil
}

func (s *TopicService) Create(ctx context.Context, principal *model.User, req CreateTopicRequest) (*model.Topic, error) {
	if req.Title == "" || req.CategoryID == "" {
		return nil, common.Errorf("title and category_id are required: %w", common.ErrBadRequest)
	}

	// The write gate also rejects locked categories.
	category, err := s.access.Require(ctx, principal, req.CategoryID, model.ActionWrite)
	if err != nil {
		return nil, err
	}

	topic := &model.Topic{
		ID:           uuid.NewString(),
		Title:        req.Title,
		AuthorID:     principal.ID,
		AuthorName:   principal.Username,
		CategoryID:   category.ID,
		CategoryName: category.Name,
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Rename changes a topic title. Only the author may do this; admins have
// their own moderation surface (lock) and do not edit titles.
func (s *TopicService) Rename(ctx context.Context, principal *model.User, topicID, newTitle string) error {
	if newTitle == "" {
		return common.Errorf("new title has to be given: %w", common.ErrBadRequest)
	}

	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.AuthorID != principal.ID {
		return common.Errorf("only the topic author can rename it: %w", common.ErrForbidden)
	}
	return s.topicRepo.UpdateTitle(ctx, topicID, newTitle)
}

// ChooseBestReply marks one of the topic's replies as the best answer.
// Author only; the reply must belong to the topic.
func (s *TopicService) ChooseBestReply(ctx context.Context, principal *model.User, topicID, replyID string) error {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.AuthorID != principal.ID {
		return common.Errorf("only the topic author can choose a best reply: %w", common.ErrForbidden)
	}

	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.TopicID != topicID {
		return common.Errorf("reply does not belong to this topic: %w", common.ErrBadRequest)
	}
	return s.topicRepo.SetBestReply(ctx, topicID, replyID)
}

// LockUnlock flips the topic lock. Admin-only; enforced at the route.
func (s *TopicService) LockUnlock(ctx context.Context, topicID string) (string, error) {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return "", err
	}

	if err := s.topicRepo.SetLocked(ctx, topicID, !topic.IsLocked); err != nil {
		return "", err
	}
	if topic.IsLocked {
		return "unlocked", nil
	}
	return "locked", nil
}
