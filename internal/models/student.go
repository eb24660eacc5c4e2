package models

import (
	"github.com/google/uuid"
)

// Student is a joined participant. Identity is bound to the WebSocket
// connection: a dropped connection removes the student from the roster.
type Student struct {
	ID           uuid.UUID `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Name         string    `json:"name"`
	HasAnswered  bool      `json:"hasAnswered"`
	JoinedAt     int64     `json:"joinedAt"`
}
