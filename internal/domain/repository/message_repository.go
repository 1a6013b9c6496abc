package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	// Conversation returns all messages exchanged between two users,
	// oldest first.
	Conversation(ctx context.Context, userID, otherID string) ([]model.Message, error)
	// Partners lists every user the given user has exchanged messages
	// with, in either direction.
	Partners(ctx context.Context, userID string) ([]model.UserInfo, error)
	UpdateText(ctx context.Context, id, text string) error
}

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

const messageSelect = `SELECT m.id, m.sender_id, s.username, m.receiver_id, r.username, m.message_text, m.created_at, m.edited_at
	FROM messages m
	JOIN users s ON m.sender_id = s.id
	JOIN users r ON m.receiver_id = r.id`

func (r *pgMessageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `INSERT INTO messages (id, sender_id, receiver_id, message_text)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, message.ID, message.SenderID, message.ReceiverID, message.Text)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	query := messageSelect + ` WHERE m.id = $1`
	message := &model.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID, &message.SenderID, &message.SenderName,
		&message.ReceiverID, &message.ReceiverName,
		&message.Text, &message.CreatedAt, &message.EditedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMessageRepository.FindByID: %w", err)
	}
	return message, nil
}

func (r *pgMessageRepository) Conversation(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	query := messageSelect + ` WHERE (m.sender_id = $1 AND m.receiver_id = $2)
	             OR (m.sender_id = $2 AND m.receiver_id = $1)
	          ORDER BY m.created_at`
	rows, err := r.db.QueryContext(ctx, query, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.Conversation: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var message model.Message
		if err := rows.Scan(
			&message.ID, &message.SenderID, &message.SenderName,
			&message.ReceiverID, &message.ReceiverName,
			&message.Text, &message.CreatedAt, &message.EditedAt,
		); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.Conversation: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *pgMessageRepository) Partners(ctx context.Context, userID string) ([]model.UserInfo, error) {
	query := `SELECT u.username, u.email, u.first_name, u.last_name
	          FROM users u
	          JOIN messages m ON u.id = m.receiver_id
	          WHERE m.sender_id = $1
	          UNION
	          SELECT u.username, u.email, u.first_name, u.last_name
	          FROM users u
	          JOIN messages m ON u.id = m.sender_id
	          WHERE m.receiver_id = $1
	          ORDER BY username`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.Partners: %w", err)
	}
	defer rows.Close()

	var partners []model.UserInfo
	for rows.Next() {
		var info model.UserInfo
		if err := rows.Scan(&info.Username, &info.Email, &info.FirstName, &info.LastName); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.Partners: %w", err)
		}
		partners = append(partners, info)
	}
	return partners, rows.Err()
}

func (r *pgMessageRepository) UpdateText(ctx context.Context, id, text string) error {
	query := `UPDATE messages SET message_text = $1, edited_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, text, id)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.UpdateText: %w", err)
	}
	return requireAffected(result, "pgMessageRepository.UpdateText")
}
