// Package roster tracks connected students and their per-poll answered state.
package roster

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

var (
	// ErrEmptyName rejects empty or whitespace-only display names.
	ErrEmptyName = errors.New("Name is required")
	// ErrNameTaken rejects a display name already used by a connected student.
	ErrNameTaken = errors.New("Name already taken")
)

// Roster is the in-memory participant registry, keyed by connection id.
// It is not safe for concurrent use; the session aggregate serializes access.
type Roster struct {
	byConn map[string]*models.Student
	order  []string // connection ids in join order
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{byConn: make(map[string]*models.Student)}
}

// Join registers a student for the given connection. Names are compared on
// their trimmed value, case-sensitively.
func (r *Roster) Join(connID, name string) (*models.Student, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyName
	}
	for _, s := range r.byConn {
		if s.Name == trimmed {
			return nil, ErrNameTaken
		}
	}
	student := &models.Student{
		ID:           uuid.New(),
		ConnectionID: connID,
		Name:         trimmed,
		JoinedAt:     time.Now().UnixMilli(),
	}
	r.byConn[connID] = student
	r.order = append(r.order, connID)
	return student, nil
}

// Leave removes the student for a disconnecting connection. Unknown
// connections are a no-op.
func (r *Roster) Leave(connID string) *models.Student {
	s, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	r.remove(connID)
	return s
}

// RemoveByID removes a student by participant id (teacher kick). Returns the
// removed student, or nil when the id is unknown.
func (r *Roster) RemoveByID(studentID string) *models.Student {
	for connID, s := range r.byConn {
		if s.ID.String() == studentID {
			r.remove(connID)
			return s
		}
	}
	return nil
}

// Get returns the student for a connection, if any.
func (r *Roster) Get(connID string) (*models.Student, bool) {
	s, ok := r.byConn[connID]
	return s, ok
}

// MarkAnswered flags the student with the given participant id as having
// answered the current poll.
func (r *Roster) MarkAnswered(studentID uuid.UUID) {
	for _, s := range r.byConn {
		if s.ID == studentID {
			s.HasAnswered = true
			return
		}
	}
}

// ResetAllAnswered clears every answered flag. Called when a new poll starts.
func (r *Roster) ResetAllAnswered() {
	for _, s := range r.byConn {
		s.HasAnswered = false
	}
}

// Snapshot returns the students in join order. The returned slice holds
// copies so callers can marshal it outside the session lock.
func (r *Roster) Snapshot() []models.Student {
	out := make([]models.Student, 0, len(r.byConn))
	for _, connID := range r.order {
		if s, ok := r.byConn[connID]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// Size returns the number of connected students.
func (r *Roster) Size() int {
	return len(r.byConn)
}

func (r *Roster) remove(connID string) {
	delete(r.byConn, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
