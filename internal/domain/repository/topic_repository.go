package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

type TopicFilter struct {
	Search       string
	Username     string
	CategoryName string
	Locked       *bool
	PublicOnly   bool
	SortBy       string
	SortDesc     bool
	Limit        int
	Offset       int
}

type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	FindByID(ctx context.Context, id string) (*model.Topic, error)
	List(ctx context.Context, filter TopicFilter) ([]model.Topic, error)
	UpdateTitle(ctx context.Context, id, title string) error
	SetBestReply(ctx context.Context, id, replyID string) error
	SetLocked(ctx context.Context, id string, locked bool) error
	// ClearBestReply detaches a single reply wherever it is marked best,
	// ahead of deleting that reply.
	ClearBestReply(ctx context.Context, tx *sql.Tx, replyID string) error
	// ClearBestReplies must run before the category's replies are
	// deleted; best_reply_id references them.
	ClearBestReplies(ctx context.Context, tx *sql.Tx, categoryID string) error
	DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error
}

type pgTopicRepository struct {
	db *sql.DB
}

func NewPgTopicRepository(db *sql.DB) TopicRepository {
	return &pgTopicRepository{db: db}
}

const topicSelect = `SELECT t.id, t.title, t.author_id, u.username, t.category_id, c.name, t.is_locked, t.best_reply_id, t.created_at
	FROM topics t
	JOIN users u ON t.author_id = u.id
	JOIN categories c ON t.category_id = c.id`

var topicSortColumns = map[string]string{
	"title":      "t.title",
	"created_at": "t.created_at",
	"category":   "c.name",
	"author":     "u.username",
}

func (r *pgTopicRepository) Create(ctx context.Context, topic *model.Topic) error {
	query := `INSERT INTO topics (id, title, author_id, category_id, is_locked)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, topic.ID, topic.Title, topic.AuthorID, topic.CategoryID, topic.IsLocked)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTopicRepository) FindByID(ctx context.Context, id string) (*model.Topic, error) {
	query := topicSelect + ` WHERE t.id = $1`
	topic := &model.Topic{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&topic.ID, &topic.Title, &topic.AuthorID, &topic.AuthorName,
		&topic.CategoryID, &topic.CategoryName, &topic.IsLocked,
		&topic.BestReplyID, &topic.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTopicRepository.FindByID: %w", err)
	}
	return topic, nil
}

func (r *pgTopicRepository) List(ctx context.Context, filter TopicFilter) ([]model.Topic, error) {
	query := topicSelect + ` WHERE 1=1`
	var params []interface{}

	if filter.PublicOnly {
		query += ` AND c.is_private = FALSE`
	}
	if filter.Search != "" {
		params = append(params, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND t.title ILIKE $%d`, len(params))
	}
	if filter.Username != "" {
		params = append(params, filter.Username)
		query += fmt.Sprintf(` AND u.username = $%d`, len(params))
	}
	if filter.CategoryName != "" {
		params = append(params, filter.CategoryName)
		query += fmt.Sprintf(` AND c.name = $%d`, len(params))
	}
	if filter.Locked != nil {
		params = append(params, *filter.Locked)
		query += fmt.Sprintf(` AND t.is_locked = $%d`, len(params))
	}

	orderBy := "t.created_at"
	if col, ok := topicSortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	query += ` ORDER BY ` + orderBy
	if filter.SortDesc {
		query += ` DESC`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	params = append(params, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(params))
	params = append(params, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(params))

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("pgTopicRepository.List: %w", err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var topic model.Topic
		if err := rows.Scan(
			&topic.ID, &topic.Title, &topic.AuthorID, &topic.AuthorName,
			&topic.CategoryID, &topic.CategoryName, &topic.IsLocked,
			&topic.BestReplyID, &topic.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgTopicRepository.List: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (r *pgTopicRepository) UpdateTitle(ctx context.Context, id, title string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE topics SET title = $1 WHERE id = $2`, title, id)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.UpdateTitle: %w", err)
	}
	return requireAffected(result, "pgTopicRepository.UpdateTitle")
}

func (r *pgTopicRepository) SetBestReply(ctx context.Context, id, replyID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE topics SET best_reply_id = $1 WHERE id = $2`, replyID, id)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.SetBestReply: %w", err)
	}
	return requireAffected(result, "pgTopicRepository.SetBestReply")
}

func (r *pgTopicRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE topics SET is_locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.SetLocked: %w", err)
	}
	return requireAffected(result, "pgTopicRepository.SetLocked")
}

func (r *pgTopicRepository) ClearBestReply(ctx context.Context, tx *sql.Tx, replyID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE topics SET best_reply_id = NULL WHERE best_reply_id = $1`, replyID)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.ClearBestReply: %w", err)
	}
	return nil
}

func (r *pgTopicRepository) ClearBestReplies(ctx context.Context, tx *sql.Tx, categoryID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE topics SET best_reply_id = NULL WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("pgTopicRepository.ClearBestReplies: %w", err)
	}
	return nil
}

func (r *pgTopicRepository) DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("pgTopicRepository.DeleteByCategory: %w", err)
	}
	return nil
}
