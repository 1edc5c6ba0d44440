package assistant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SummaryArchive persists compacted conversation summaries to PostgreSQL for
// long-term recall. The kiosk keeps working without it; archive failures are
// swallowed by the store.
type SummaryArchive struct {
	db *sql.DB
}

// NewSummaryArchive creates a new archive. Returns nil when no database is
// configured so callers can pass it straight through.
func NewSummaryArchive(db *sql.DB) *SummaryArchive {
	if db == nil {
		return nil
	}
	return &SummaryArchive{db: db}
}

// SummaryRecord is one archived compaction row.
type SummaryRecord struct {
	ID           uuid.UUID
	SessionID    string
	Summary      string
	MessageCount int
	CreatedAt    time.Time
}

// SaveSummary inserts one compacted summary row.
func (a *SummaryArchive) SaveSummary(ctx context.Context, sessionID, summary string, messageCount int, createdAt time.Time) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO conversation_summaries (id, session_id, summary, message_count, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), sessionID, summary, messageCount, createdAt,
	)
	if err != nil {
		return fmt.Errorf("assistant: failed to archive summary: %w", err)
	}
	return nil
}

// ListBySession returns the archived summaries for one session, oldest first.
func (a *SummaryArchive) ListBySession(ctx context.Context, sessionID string) ([]SummaryRecord, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, session_id, summary, message_count, created_at
		FROM conversation_summaries
		WHERE session_id = $1
		ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to list summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []SummaryRecord
	for rows.Next() {
		var r SummaryRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Summary, &r.MessageCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("assistant: failed to scan summary row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assistant: summary rows failed: %w", err)
	}
	return records, nil
}
