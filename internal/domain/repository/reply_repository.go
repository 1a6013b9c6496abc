package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	FindByID(ctx context.Context, id string) (*model.Reply, error)
	ListByTopic(ctx context.Context, topicID string) ([]model.Reply, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error
}

type pgReplyRepository struct {
	db *sql.DB
}

func NewPgReplyRepository(db *sql.DB) ReplyRepository {
	return &pgReplyRepository{db: db}
}

// replySelect carries vote tallies so listing a topic does not need a
// query per reply.
const replySelect = `SELECT r.id, r.content, r.author_id, u.username, r.topic_id, r.created_at, r.edited_at,
		COUNT(v.reply_id) FILTER (WHERE v.vote_type = 'up') AS upvotes,
		COUNT(v.reply_id) FILTER (WHERE v.vote_type = 'down') AS downvotes
	FROM replies r
	JOIN users u ON r.author_id = u.id
	LEFT JOIN votes v ON v.reply_id = r.id`

const replyGroupBy = ` GROUP BY r.id, r.content, r.author_id, u.username, r.topic_id, r.created_at, r.edited_at`

func (r *pgReplyRepository) Create(ctx context.Context, reply *model.Reply) error {
	query := `INSERT INTO replies (id, content, author_id, topic_id)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, reply.ID, reply.Content, reply.AuthorID, reply.TopicID)
	if err != nil {
		return fmt.Errorf("pgReplyRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReplyRepository) FindByID(ctx context.Context, id string) (*model.Reply, error) {
	query := replySelect + ` WHERE r.id = $1` + replyGroupBy
	reply := &model.Reply{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reply.ID, &reply.Content, &reply.AuthorID, &reply.AuthorName,
		&reply.TopicID, &reply.CreatedAt, &reply.EditedAt,
		&reply.Upvotes, &reply.Downvotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReplyRepository.FindByID: %w", err)
	}
	return reply, nil
}

func (r *pgReplyRepository) ListByTopic(ctx context.Context, topicID string) ([]model.Reply, error) {
	query := replySelect + ` WHERE r.topic_id = $1` + replyGroupBy + ` ORDER BY r.created_at`
	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("pgReplyRepository.ListByTopic: %w", err)
	}
	defer rows.Close()

	var replies []model.Reply
	for rows.Next() {
		var reply model.Reply
		if err := rows.Scan(
			&reply.ID, &reply.Content, &reply.AuthorID, &reply.AuthorName,
			&reply.TopicID, &reply.CreatedAt, &reply.EditedAt,
			&reply.Upvotes, &reply.Downvotes,
		); err != nil {
			return nil, fmt.Errorf("pgReplyRepository.ListByTopic: %w", err)
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}

func (r *pgReplyRepository) UpdateContent(ctx context.Context, id, content string) error {
	query := `UPDATE replies SET content = $1, edited_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, content, id)
	if err != nil {
		return fmt.Errorf("pgReplyRepository.UpdateContent: %w", err)
	}
	return requireAffected(result, "pgReplyRepository.UpdateContent")
}

// Delete removes one reply; votes cascade at the database level.
func (r *pgReplyRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM replies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgReplyRepository.Delete: %w", err)
	}
	return requireAffected(result, "pgReplyRepository.Delete")
}

func (r *pgReplyRepository) DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error {
	query := `DELETE FROM replies
	          WHERE topic_id IN (SELECT id FROM topics WHERE category_id = $1)`
	if _, err := tx.ExecContext(ctx, query, categoryID); err != nil {
		return fmt.Errorf("pgReplyRepository.DeleteByCategory: %w", err)
	}
	return nil
}
