package models

import (
	"github.com/google/uuid"
)

// PollOption is a single answer choice with its running vote count.
type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is the single current-session poll aggregate. Timestamps are epoch
// milliseconds to match the client contract. CreatedBy holds the owning
// connection id; only that connection may end the poll manually.
type Poll struct {
	ID        uuid.UUID      `json:"id"`
	Question  string         `json:"question"`
	Options   []PollOption   `json:"options"`
	TimeLimit int64          `json:"timeLimit"`
	StartTime int64          `json:"startTime"`
	EndTime   int64          `json:"endTime,omitempty"`
	Active    bool           `json:"active"`
	Answers   map[string]int `json:"answers"`
	CreatedBy string         `json:"createdBy"`
}

// Clone returns a deep copy safe to hand out past the session lock.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Options = make([]PollOption, len(p.Options))
	copy(cp.Options, p.Options)
	cp.Answers = make(map[string]int, len(p.Answers))
	for k, v := range p.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

// TotalVotes is the number of recorded answers.
func (p *Poll) TotalVotes() int {
	return len(p.Answers)
}

// PollResults is the live-tally projection broadcast after every vote and on
// poll close.
type PollResults struct {
	ID         uuid.UUID    `json:"id"`
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"totalVotes"`
	Active     bool         `json:"active"`
}

// Results projects the poll into its broadcast form.
func (p *Poll) Results() PollResults {
	options := make([]PollOption, len(p.Options))
	copy(options, p.Options)
	return PollResults{
		ID:         p.ID,
		Question:   p.Question,
		Options:    options,
		TotalVotes: p.TotalVotes(),
		Active:     p.Active,
	}
}
