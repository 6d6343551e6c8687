package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Strategies use a soft-delete lifecycle: deletion records deleted_at and
// every query filters on it, rows are never physically removed.

func (s *Store) CreateStrategy(ctx context.Context, userID int64, name, config string) (*Strategy, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO strategies (user_id, name, config, created_at, updated_at)
VALUES (?,?,?,?,?)
`, userID, name, config, now.Format(timeWire), now.Format(timeWire))
	if err != nil {
		return nil, fmt.Errorf("insert strategy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Strategy{ID: id, UserID: userID, Name: name, Config: config, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) GetStrategy(ctx context.Context, userID, strategyID int64) (*Strategy, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, user_id, name, config, created_at, updated_at
FROM strategies WHERE id=? AND user_id=? AND deleted_at IS NULL
`, strategyID, userID)
	var (
		st      Strategy
		created string
		updated string
	)
	if err := row.Scan(&st.ID, &st.UserID, &st.Name, &st.Config, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	st.CreatedAt, _ = time.Parse(timeWire, created)
	st.UpdatedAt, _ = time.Parse(timeWire, updated)
	return &st, nil
}

func (s *Store) ListStrategies(ctx context.Context, userID int64) ([]Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, name, config, created_at, updated_at
FROM strategies WHERE user_id=? AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Strategy
	for rows.Next() {
		var (
			st      Strategy
			created string
			updated string
		)
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &st.Config, &created, &updated); err != nil {
			return nil, err
		}
		st.CreatedAt, _ = time.Parse(timeWire, created)
		st.UpdatedAt, _ = time.Parse(timeWire, updated)
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateStrategy rewrites name/config, reporting whether a live row matched.
func (s *Store) UpdateStrategy(ctx context.Context, userID, strategyID int64, name, config string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE strategies SET name=?, config=?, updated_at=?
WHERE id=? AND user_id=? AND deleted_at IS NULL
`, name, config, time.Now().UTC().Format(timeWire), strategyID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteStrategy soft-deletes, reporting whether a live row matched.
func (s *Store) DeleteStrategy(ctx context.Context, userID, strategyID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE strategies SET deleted_at=?
WHERE id=? AND user_id=? AND deleted_at IS NULL
`, time.Now().UTC().Format(timeWire), strategyID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
