package service

import (
	"context"
	"database/sql"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/google/uuid"
)

type ReplyService struct {
	replyRepo repository.ReplyRepository
	topicRepo repository.TopicRepository
	access    *AccessService
	db        *sql.DB // For transactions
}

func NewReplyService(
	replyRepo repository.ReplyRepository,
	topicRepo repository.TopicRepository,
	access *AccessService,
	db *sql.DB,
) *ReplyService {
	return &ReplyService{
		replyRepo: replyRepo,
		topicRepo: topicRepo,
		access:    access,
		db:        db,
	}
}

type CreateReplyRequest struct {
	TopicID string `json:"topic_id"`
	Content string `json:"content"`
}

func (s *ReplyService) Create(ctx context.Context, principal *model.User, req CreateReplyRequest) (*model.Reply, error) {
	if req.TopicID == "" || req.Content == "" {
		return nil, common.Errorf("topic_id and content are required: %w", common.ErrBadRequest)
	}

	topic, err := s.topicRepo.FindByID(ctx, req.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.IsLocked && !principal.IsAdmin {
		return nil, common.Errorf("topic is locked: %w", common.ErrForbidden)
	}

	if _, err := s.access.Require(ctx, principal, topic.CategoryID, model.ActionWrite); err != nil {
		return nil, err
	}

	reply := &model.Reply{
		ID:         uuid.NewString(),
		Content:    req.Content,
		AuthorID:   principal.ID,
		AuthorName: principal.Username,
		TopicID:    topic.ID,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *ReplyService) Edit(ctx context.Context, principal *model.User, replyID, content string) (*model.Reply, error) {
	if content == "" {
		return nil, common.Errorf("content is required: %w", common.ErrBadRequest)
	}

	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.AuthorID != principal.ID {
		return nil, common.Errorf("only the reply author can edit it: %w", common.ErrForbidden)
	}

	if err := s.replyRepo.UpdateContent(ctx, replyID, content); err != nil {
		return nil, err
	}
	return s.replyRepo.FindByID(ctx, replyID)
}

// Delete removes a reply. The author or an admin may do this. Any topic
// pointing at the reply as its best answer is detached first, in the same
// transaction; votes cascade in the database.
func (s *ReplyService) Delete(ctx context.Context, principal *model.User, replyID string) error {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.AuthorID != principal.ID && !principal.IsAdmin {
		return common.Errorf("only the reply author can delete it: %w", common.ErrForbidden)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.topicRepo.ClearBestReply(ctx, tx, replyID); err != nil {
		return err
	}
	if err := s.replyRepo.Delete(ctx, tx, replyID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
