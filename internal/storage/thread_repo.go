package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/uche-madu/gamma-rag/internal/models"

	"github.com/jackc/pgx/v5"
)

// ThreadRepo persists conversation threads. Messages are append-only;
// summarization is the single operation allowed to remove history, and it
// replaces the removed head with one summary message.
type ThreadRepo struct {
	db *DB
}

func NewThreadRepo(db *DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

func (r *ThreadRepo) Append(ctx context.Context, m models.Message) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	userTurn := 0
	if m.Role == models.RoleUser {
		userTurn = 1
	}
	_, err = tx.Exec(ctx, `
INSERT INTO threads (thread_id, turns_since_summary)
VALUES ($1, $2)
ON CONFLICT (thread_id)
DO UPDATE SET
  turns_since_summary = threads.turns_since_summary + $2,
  updated_at = NOW()`, m.ThreadID, userTurn)
	if err != nil {
		return fmt.Errorf("upsert thread %s: %w", m.ThreadID, err)
	}

	_, err = tx.Exec(ctx, `
INSERT INTO messages (message_id, thread_id, role, text)
VALUES ($1, $2, $3, $4)`, m.MessageID, m.ThreadID, string(m.Role), m.Text)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append tx: %w", err)
	}
	return nil
}

func (r *ThreadRepo) Read(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT message_id, thread_id, role, text, created_at
FROM messages
WHERE thread_id = $1
ORDER BY seq ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("read thread %s: %w", threadID, err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		var role string
		if err := rows.Scan(&m.MessageID, &m.ThreadID, &role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = models.Role(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (r *ThreadRepo) TurnsSinceSummary(ctx context.Context, threadID string) (int, error) {
	var turns int
	err := r.db.Pool.QueryRow(ctx, `
SELECT turns_since_summary FROM threads WHERE thread_id = $1`, threadID).Scan(&turns)
	if errors.Is(err, pgx.ErrNoRows) {
		// A thread that has never appended a message has zero turns.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read turn counter for %s: %w", threadID, err)
	}
	return turns, nil
}

// ReplaceHeadWithSummary condenses everything except the most recent
// keepRecent messages into a single summary message and resets the
// summarization turn counter.
func (r *ThreadRepo) ReplaceHeadWithSummary(ctx context.Context, threadID, summaryText string, keepRecent int) error {
	if keepRecent < 0 {
		keepRecent = 0
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin summary tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var keepMin int64
	err = tx.QueryRow(ctx, `
SELECT COALESCE(MIN(seq), 0)
FROM (SELECT seq FROM messages WHERE thread_id = $1 ORDER BY seq DESC LIMIT $2) tail`,
		threadID, keepRecent).Scan(&keepMin)
	if err != nil {
		return fmt.Errorf("find recency window: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE thread_id = $1 AND seq < $2`, threadID, keepMin); err != nil {
		return fmt.Errorf("drop summarized head: %w", err)
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO messages (seq, message_id, thread_id, role, text)
VALUES ($1, gen_random_uuid(), $2, $3, $4)`, keepMin-1, threadID, string(models.RoleSummary), summaryText); err != nil {
		return fmt.Errorf("insert summary message: %w", err)
	}
	if _, err := tx.Exec(ctx, `
UPDATE threads SET turns_since_summary = 0, summary = $2, updated_at = NOW()
WHERE thread_id = $1`, threadID, summaryText); err != nil {
		return fmt.Errorf("reset turn counter: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit summary tx: %w", err)
	}
	return nil
}
