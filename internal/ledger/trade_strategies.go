package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTradeInterval = "5m"

// CreateTradeStrategy binds symbol to an existing strategy. An unknown
// strategy id trips the foreign key and returns ErrStrategyNotFound.
func (s *Store) CreateTradeStrategy(ctx context.Context, symbol string, strategyID int64, interval string) (*TradeStrategy, error) {
	if interval == "" {
		interval = defaultTradeInterval
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO trade_strategies (symbol, strategy_id, timestamp, created_at, updated_at)
VALUES (?,?,?,?,?)
`, symbol, strategyID, interval, now.Format(timeWire), now.Format(timeWire))
	if err != nil {
		if isFKViolation(err) {
			return nil, ErrStrategyNotFound
		}
		return nil, fmt.Errorf("insert trade strategy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &TradeStrategy{
		ID:         id,
		Symbol:     symbol,
		StrategyID: strategyID,
		Interval:   interval,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ListTradeStrategies returns mappings newest first. Soft-deleted rows are
// included unless includeDeleted is false.
func (s *Store) ListTradeStrategies(ctx context.Context, includeDeleted bool) ([]TradeStrategy, error) {
	q := `
SELECT id, symbol, strategy_id, timestamp, created_at, updated_at, deleted_at
FROM trade_strategies`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeStrategy
	for rows.Next() {
		ts, err := scanTradeStrategy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ts)
	}
	return out, rows.Err()
}

// GetTradeStrategy returns the live mapping, or nil when the id is unknown
// or soft-deleted.
func (s *Store) GetTradeStrategy(ctx context.Context, id int64) (*TradeStrategy, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, symbol, strategy_id, timestamp, created_at, updated_at, deleted_at
FROM trade_strategies WHERE id=? AND deleted_at IS NULL
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTradeStrategy(rows)
}

// UpdateTradeStrategy rewrites the non-nil fields of a live mapping and
// returns the updated row, or nil when no live row matched.
func (s *Store) UpdateTradeStrategy(ctx context.Context, id int64, upd TradeStrategyUpdate) (*TradeStrategy, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE trade_strategies
SET symbol=COALESCE(?, symbol),
    strategy_id=COALESCE(?, strategy_id),
    timestamp=COALESCE(?, timestamp),
    updated_at=?
WHERE id=? AND deleted_at IS NULL
`, upd.Symbol, upd.StrategyID, upd.Interval, time.Now().UTC().Format(timeWire), id)
	if err != nil {
		if isFKViolation(err) {
			return nil, ErrStrategyNotFound
		}
		return nil, fmt.Errorf("update trade strategy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetTradeStrategy(ctx, id)
}

// SoftDeleteTradeStrategy marks a live mapping deleted, returning the row it
// retired, or nil when no live row matched.
func (s *Store) SoftDeleteTradeStrategy(ctx context.Context, id int64) (*TradeStrategy, error) {
	ts, err := s.GetTradeStrategy(ctx, id)
	if err != nil || ts == nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
UPDATE trade_strategies SET deleted_at=? WHERE id=? AND deleted_at IS NULL
`, now.Format(timeWire), id)
	if err != nil {
		return nil, fmt.Errorf("delete trade strategy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ts.DeletedAt = &now
	return ts, nil
}

func scanTradeStrategy(rows *sql.Rows) (*TradeStrategy, error) {
	var (
		ts      TradeStrategy
		created string
		updated string
		deleted sql.NullString
	)
	if err := rows.Scan(&ts.ID, &ts.Symbol, &ts.StrategyID, &ts.Interval, &created, &updated, &deleted); err != nil {
		return nil, err
	}
	ts.CreatedAt, _ = time.Parse(timeWire, created)
	ts.UpdatedAt, _ = time.Parse(timeWire, updated)
	if deleted.Valid {
		d, err := time.Parse(timeWire, deleted.String)
		if err == nil {
			ts.DeletedAt = &d
		}
	}
	return &ts, nil
}
