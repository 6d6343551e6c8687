package ledger

import (
	"context"
	"fmt"
	"time"
)

// CreateLog stores an opaque payload for the user. The ledger does not
// interpret the payload's structure.
func (s *Store) CreateLog(ctx context.Context, userID int64, payload string) (*LogEntry, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO logs (user_id, payload, created_at) VALUES (?,?,?)
`, userID, payload, now.Format(timeWire))
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &LogEntry{ID: id, UserID: userID, Payload: payload, CreatedAt: now}, nil
}

func (s *Store) ListLogs(ctx context.Context, userID int64, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, payload, created_at
FROM logs WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var (
			e       LogEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Payload, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeWire, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
