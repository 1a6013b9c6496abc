package model

import (
	"time"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsLocked  bool      `json:"is_locked"`  // topic creation disabled
	IsPrivate bool      `json:"is_private"` // readable only with an explicit grant
	CreatedAt time.Time `json:"created_at"`
}
