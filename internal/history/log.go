// Package history keeps the append-only record of concluded polls.
package history

import (
	"context"

	"github.com/classpulse/backend/internal/models"
)

// Archiver mirrors closed polls to a durable store. Implementations must be
// safe for concurrent use; the session calls Archive off its state lock.
type Archiver interface {
	Archive(ctx context.Context, poll models.Poll) error
}

// Log is the in-memory append-only sequence of closed polls, in closure
// order. It is not safe for concurrent use; the session aggregate serializes
// access.
type Log struct {
	entries []models.Poll
}

// NewLog returns an empty history log.
func NewLog() *Log {
	return &Log{}
}

// Append records a closed poll snapshot. Entries are never mutated or
// removed afterwards.
func (l *Log) Append(poll models.Poll) {
	l.entries = append(l.entries, poll)
}

// All returns every closed poll in closure order. The returned slice is a
// copy; entries themselves are immutable snapshots.
func (l *Log) All() []models.Poll {
	out := make([]models.Poll, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of closed polls.
func (l *Log) Len() int {
	return len(l.entries)
}
