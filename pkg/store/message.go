package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("message not found")
	ErrEmptyContent = errors.New("message content is empty")
)

type Message struct {
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"content"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
