package model

import (
	"time"
)

type Message struct {
	ID           string     `json:"id"`
	SenderID     string     `json:"sender_id"`
	SenderName   string     `json:"sender_name,omitempty"`
	ReceiverID   string     `json:"receiver_id"`
	ReceiverName string     `json:"receiver_name,omitempty"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
}
