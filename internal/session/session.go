// Package session owns all mutable classroom state: the roster, the single
// current poll and the history log. Every mutation is serialized through one
// mutex; broadcasts are computed under the lock and delivered as non-blocking
// sends, so a slow client never holds the state hostage.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/history"
	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/roster"
)

// Error messages double as the user-facing text of unicast error events.
var (
	ErrInvalidPoll     = errors.New("Invalid poll data")
	ErrNoActivePoll    = errors.New("No active poll")
	ErrAlreadyAnswered = errors.New("You have already answered")
	ErrInvalidOption   = errors.New("Invalid option")
	ErrUnknownStudent  = errors.New("Student not found")
)

// Broadcaster delivers events to connected clients. Sends must not block.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
	SendTo(connID, event string, payload interface{})
}

const archiveTimeout = 5 * time.Second

// Session is the single logical owner of roster, current poll and history.
type Session struct {
	mu      sync.Mutex
	roster  *roster.Roster
	log     *history.Log
	current *models.Poll
	timer   *time.Timer

	broadcaster      Broadcaster
	archiver         history.Archiver // optional
	defaultTimeLimit time.Duration
	logger           *zap.Logger
}

// New creates a session. archiver may be nil when no durable store is
// configured.
func New(b Broadcaster, archiver history.Archiver, defaultTimeLimit time.Duration, logger *zap.Logger) *Session {
	return &Session{
		roster:           roster.New(),
		log:              history.NewLog(),
		broadcaster:      b,
		archiver:         archiver,
		defaultTimeLimit: defaultTimeLimit,
		logger:           logger,
	}
}

// Join registers a student and broadcasts the updated roster. The returned
// student is the caller's join acknowledgement.
func (s *Session) Join(connID, name string) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.roster.Join(connID, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("student joined", zap.String("name", student.Name))
	s.broadcaster.Broadcast("studentsUpdate", s.roster.Snapshot())

	// Hand out a copy; the roster entry keeps mutating under the lock.
	ack := *student
	return &ack, nil
}

// Leave handles a disconnecting connection. Unknown connections are a no-op.
func (s *Session) Leave(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student := s.roster.Leave(connID)
	if student == nil {
		return
	}
	s.logger.Info("student left", zap.String("name", student.Name))
	s.broadcaster.Broadcast("studentsUpdate", s.roster.Snapshot())
}

// RemoveStudent force-removes a student by participant id. Unknown ids are a
// silent no-op: nothing is broadcast and no error is reported.
func (s *Session) RemoveStudent(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student := s.roster.RemoveByID(studentID)
	if student == nil {
		return
	}
	s.logger.Info("student removed", zap.String("name", student.Name))
	s.broadcaster.SendTo(student.ConnectionID, "removed", map[string]string{
		"message": "You have been removed by the teacher",
	})
	s.broadcaster.Broadcast("studentsUpdate", s.roster.Snapshot())
}

// CreatePoll validates and starts a new poll. An active poll is superseded:
// it is closed (with its history append and pollEnded broadcast) before the
// new poll becomes current, so clients observe close-then-open in order.
// A timeLimitMs of zero or less falls back to the configured default.
func (s *Session) CreatePoll(ownerConnID, question string, options []string, timeLimitMs int64) error {
	question = strings.TrimSpace(question)
	if question == "" || len(options) < 2 {
		return ErrInvalidPoll
	}
	opts := make([]models.PollOption, len(options))
	for i, text := range options {
		text = strings.TrimSpace(text)
		if text == "" {
			return ErrInvalidPoll
		}
		opts[i] = models.PollOption{Text: text}
	}
	if timeLimitMs <= 0 {
		timeLimitMs = s.defaultTimeLimit.Milliseconds()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Active {
		s.closeCurrentLocked()
	}

	poll := &models.Poll{
		ID:        uuid.New(),
		Question:  question,
		Options:   opts,
		TimeLimit: timeLimitMs,
		StartTime: time.Now().UnixMilli(),
		Active:    true,
		Answers:   make(map[string]int),
		CreatedBy: ownerConnID,
	}
	s.current = poll
	s.roster.ResetAllAnswered()

	// The timer captures the poll id; a stale fire for a superseded poll is
	// rejected by the identity check in closeByTimer.
	pollID := poll.ID
	s.timer = time.AfterFunc(time.Duration(timeLimitMs)*time.Millisecond, func() {
		s.closeByTimer(pollID)
	})

	s.logger.Info("poll created",
		zap.String("question", question),
		zap.Int64("time_limit_ms", timeLimitMs),
	)
	s.broadcaster.Broadcast("newPoll", poll.Clone())
	s.broadcaster.Broadcast("studentsUpdate", s.roster.Snapshot())
	return nil
}

// SubmitAnswer records one vote for the student behind connID. Each student
// votes at most once per poll; the poll never auto-closes on full
// participation.
func (s *Session) SubmitAnswer(connID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.roster.Get(connID)
	if !ok {
		return ErrUnknownStudent
	}
	if s.current == nil || !s.current.Active {
		return ErrNoActivePoll
	}
	if _, answered := s.current.Answers[student.ID.String()]; answered {
		return ErrAlreadyAnswered
	}
	if optionIndex < 0 || optionIndex >= len(s.current.Options) {
		return ErrInvalidOption
	}

	s.current.Answers[student.ID.String()] = optionIndex
	s.current.Options[optionIndex].Votes++
	s.roster.MarkAnswered(student.ID)

	s.logger.Info("answer recorded",
		zap.String("student", student.Name),
		zap.String("option", s.current.Options[optionIndex].Text),
	)
	s.broadcaster.Broadcast("studentsUpdate", s.roster.Snapshot())
	s.broadcaster.Broadcast("pollResults", s.current.Results())
	return nil
}

// EndPoll closes the current poll if the requester owns it. Anything else is
// a silent no-op: ending is a capability of the creating connection, not a
// reportable failure.
func (s *Session) EndPoll(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.Active || s.current.CreatedBy != connID {
		return
	}
	s.closeCurrentLocked()
}

// closeByTimer is the timeout path. It re-validates that the captured poll is
// still the active current poll before closing, so a stale timer from a
// superseded or already-closed poll never touches a newer one.
func (s *Session) closeByTimer(pollID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != pollID || !s.current.Active {
		return
	}
	s.closeCurrentLocked()
}

// closeCurrentLocked finalizes the current poll: terminal state flip, history
// append, optional async archive, pollEnded broadcast. Caller holds the lock
// and has checked the poll is active.
func (s *Session) closeCurrentLocked() {
	poll := s.current
	poll.Active = false
	poll.EndTime = time.Now().UnixMilli()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	snapshot := *poll.Clone()
	s.log.Append(snapshot)
	if s.archiver != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()
			if err := s.archiver.Archive(ctx, snapshot); err != nil {
				s.logger.Warn("archive poll", zap.Error(err))
			}
		}()
	}

	s.logger.Info("poll ended",
		zap.String("question", poll.Question),
		zap.Int("total_votes", poll.TotalVotes()),
	)
	s.broadcaster.Broadcast("pollEnded", poll.Results())
}

// CurrentPoll returns a copy of the current poll slot, or nil when no poll
// has been created yet. The just-closed poll remains visible until the next
// one supersedes it.
func (s *Session) CurrentPoll() *models.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// History returns every closed poll in closure order.
func (s *Session) History() []models.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.All()
}

// Students returns the roster snapshot in join order.
func (s *Session) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Snapshot()
}

// StudentName resolves a connection to its display name, for chat labels.
func (s *Session) StudentName(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	student, ok := s.roster.Get(connID)
	if !ok {
		return "", false
	}
	return student.Name, true
}
