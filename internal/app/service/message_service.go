package service

import (
	"context"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"

	"github.com/google/uuid"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

type SendMessageRequest struct {
	Receiver string `json:"receiver"` // username
	Text     string `json:"text"`
}

func (s *MessageService) Send(ctx context.Context, principal *model.User, req SendMessageRequest) (*model.Message, error) {
	if req.Receiver == "" || req.Text == "" {
		return nil, common.Errorf("receiver and text are required: %w", common.ErrBadRequest)
	}

	receiver, err := s.userRepo.FindByUsername(ctx, req.Receiver)
	if err != nil {
		return nil, err
	}
	if receiver.IsDeleted {
		return nil, common.Errorf("user not found: %w", common.ErrNotFound)
	}
	if receiver.ID == principal.ID {
		return nil, common.Errorf("cannot send a message to yourself: %w", common.ErrBadRequest)
	}

	message := &model.Message{
		ID:           uuid.NewString(),
		SenderID:     principal.ID,
		SenderName:   principal.Username,
		ReceiverID:   receiver.ID,
		ReceiverName: receiver.Username,
		Text:         req.Text,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *MessageService) Conversation(ctx context.Context, principal *model.User, username string) ([]model.Message, error) {
	other, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.Conversation(ctx, principal.ID, other.ID)
}

func (s *MessageService) Partners(ctx context.Context, principal *model.User) ([]model.UserInfo, error) {
	return s.messageRepo.Partners(ctx, principal.ID)
}

func (s *MessageService) Edit(ctx context.Context, principal *model.User, messageID, text string) (*model.Message, error) {
	if text == "" {
		return nil, common.Errorf("text is required: %w", common.ErrBadRequest)
	}

	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != principal.ID {
		return nil, common.Errorf("only the sender can edit a message: %w", common.ErrForbidden)
	}

	if err := s.messageRepo.UpdateText(ctx, messageID, text); err != nil {
		return nil, err
	}
	message.Text = text
	return message, nil
}
