// Package chat relays free-text messages to every connected client. No
// retention: a client joining mid-session sees no prior chat.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

// Broadcaster fans a message out to all connections, sender included.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// NameLookup resolves a connection id to a student display name.
type NameLookup func(connID string) (string, bool)

// TeacherLabel is the fixed sender label for teacher messages.
const TeacherLabel = "Teacher"

// Relay broadcasts chat messages tagged with sender identity.
type Relay struct {
	broadcaster Broadcaster
	lookup      NameLookup
}

// NewRelay creates a chat relay.
func NewRelay(b Broadcaster, lookup NameLookup) *Relay {
	return &Relay{broadcaster: b, lookup: lookup}
}

// Send broadcasts a chat message from the given connection. Empty messages
// (after trimming) are dropped silently.
func (r *Relay) Send(connID, text string, isTeacher bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	sender := TeacherLabel
	if !isTeacher {
		name, ok := r.lookup(connID)
		if !ok {
			name = "Anonymous"
		}
		sender = name
	}

	r.broadcaster.Broadcast("newMessage", models.ChatMessage{
		ID:        uuid.New(),
		Message:   text,
		Sender:    sender,
		IsTeacher: isTeacher,
		Timestamp: time.Now().UnixMilli(),
	})
}
