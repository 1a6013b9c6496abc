package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum_board/internal/domain/model"
)

type VoteRepository interface {
	// Find returns nil when the user has not voted on the reply.
	Find(ctx context.Context, userID, replyID string) (*model.Vote, error)
	Insert(ctx context.Context, vote *model.Vote) error
	Update(ctx context.Context, vote *model.Vote) error
	Delete(ctx context.Context, userID, replyID string) error
}

type pgVoteRepository struct {
	db *sql.DB
}

func NewPgVoteRepository(db *sql.DB) VoteRepository {
	return &pgVoteRepository{db: db}
}

func (r *pgVoteRepository) Find(ctx context.Context, userID, replyID string) (*model.Vote, error) {
	query := `SELECT user_id, reply_id, vote_type FROM votes WHERE user_id = $1 AND reply_id = $2`
	vote := &model.Vote{}
	err := r.db.QueryRowContext(ctx, query, userID, replyID).Scan(&vote.UserID, &vote.ReplyID, &vote.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgVoteRepository.Find: %w", err)
	}
	return vote, nil
}

func (r *pgVoteRepository) Insert(ctx context.Context, vote *model.Vote) error {
	query := `INSERT INTO votes (user_id, reply_id, vote_type) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, vote.UserID, vote.ReplyID, vote.Type); err != nil {
		return fmt.Errorf("pgVoteRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgVoteRepository) Update(ctx context.Context, vote *model.Vote) error {
	query := `UPDATE votes SET vote_type = $1 WHERE user_id = $2 AND reply_id = $3`
	if _, err := r.db.ExecContext(ctx, query, vote.Type, vote.UserID, vote.ReplyID); err != nil {
		return fmt.Errorf("pgVoteRepository.Update: %w", err)
	}
	return nil
}

func (r *pgVoteRepository) Delete(ctx context.Context, userID, replyID string) error {
	query := `DELETE FROM votes WHERE user_id = $1 AND reply_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, replyID); err != nil {
		return fmt.Errorf("pgVoteRepository.Delete: %w", err)
	}
	return nil
}
