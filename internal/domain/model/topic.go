package model

import (
	"time"
)

type Topic struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	IsLocked     bool      `json:"is_locked"`
	BestReplyID  *string   `json:"best_reply_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Replies []Reply `json:"replies,omitempty"`
}
