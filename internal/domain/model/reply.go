package model

import (
	"time"
)

type Reply struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
	TopicID    string     `json:"topic_id"`
	CreatedAt  time.Time  `json:"created_at"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	Upvotes    int        `json:"upvotes"`
	Downvotes  int        `json:"downvotes"`
}
