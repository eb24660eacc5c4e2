package models

import (
	"github.com/google/uuid"
)

// ChatMessage is a broadcast-only chat line. Messages are never stored; a
// client joining mid-session sees no prior chat.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	IsTeacher bool      `json:"isTeacher"`
	Timestamp int64     `json:"timestamp"`
}
