package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
)

// PostgresArchive writes closed polls to a poll_history table. It is an
// optional durable mirror of the in-memory log; the read path never touches
// it.
type PostgresArchive struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresArchive creates an archive and ensures its schema exists.
func NewPostgresArchive(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PostgresArchive, error) {
	const schema = `CREATE TABLE IF NOT EXISTS poll_history (
		id UUID PRIMARY KEY,
		question TEXT NOT NULL,
		options JSONB NOT NULL,
		answers JSONB NOT NULL,
		total_votes INT NOT NULL,
		time_limit_ms BIGINT NOT NULL,
		started_at BIGINT NOT NULL,
		ended_at BIGINT NOT NULL,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure poll_history schema: %w", err)
	}
	logger.Info("poll history archive ready")
	return &PostgresArchive{pool: pool, logger: logger}, nil
}

// Archive inserts one closed poll. Re-archiving the same poll id is a no-op
// so a superseding close racing a timer close cannot produce duplicates.
func (a *PostgresArchive) Archive(ctx context.Context, poll models.Poll) error {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	answers, err := json.Marshal(poll.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	const query = `INSERT INTO poll_history (id, question, options, answers, total_votes, time_limit_ms, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	_, err = a.pool.Exec(ctx, query,
		poll.ID, poll.Question, options, answers, poll.TotalVotes(), poll.TimeLimit, poll.StartTime, poll.EndTime)
	if err != nil {
		return fmt.Errorf("insert poll history: %w", err)
	}
	return nil
}
