package service

import (
	"context"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"
)

type VoteService struct {
	voteRepo  repository.VoteRepository
	replyRepo repository.ReplyRepository
}

func NewVoteService(voteRepo repository.VoteRepository, replyRepo repository.ReplyRepository) *VoteService {
	return &VoteService{voteRepo: voteRepo, replyRepo: replyRepo}
}

// Vote casts, flips, or retracts a vote on a reply: repeating the same
// vote removes it, voting the other way replaces it.
func (s *VoteService) Vote(ctx context.Context, principal *model.User, replyID string, voteType model.VoteType) (string, error) {
	if !voteType.Valid() {
		return "", common.Errorf("vote type must be 'up' or 'down': %w", common.ErrBadRequest)
	}

	if _, err := s.replyRepo.FindByID(ctx, replyID); err != nil {
		return "", err
	}

	current, err := s.voteRepo.Find(ctx, principal.ID, replyID)
	if err != nil {
		return "", err
	}

	if current == nil {
		err = s.voteRepo.Insert(ctx, &model.Vote{UserID: principal.ID, ReplyID: replyID, Type: voteType})
		if err != nil {
			return "", err
		}
		return string(voteType) + "voted", nil
	}

	if current.Type == voteType {
		if err := s.voteRepo.Delete(ctx, principal.ID, replyID); err != nil {
			return "", err
		}
		return "vote deleted", nil
	}

	current.Type = voteType
	if err := s.voteRepo.Update(ctx, current); err != nil {
		return "", err
	}
	return string(voteType) + "voted", nil
}
