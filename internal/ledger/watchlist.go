package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (s *Store) CreateWatchlist(ctx context.Context, symbol string) (*Watchlist, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO watchlist (symbol, created_at) VALUES (?,?)
`, symbol, now.Format(timeWire))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSymbolWatched
		}
		return nil, fmt.Errorf("insert watchlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Watchlist{ID: id, Symbol: symbol, CreatedAt: now}, nil
}

func (s *Store) GetWatchlists(ctx context.Context) ([]Watchlist, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, symbol, created_at FROM watchlist ORDER BY created_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Watchlist
	for rows.Next() {
		var (
			w       Watchlist
			created string
		)
		if err := rows.Scan(&w.ID, &w.Symbol, &created); err != nil {
			return nil, err
		}
		w.CreatedAt, _ = time.Parse(timeWire, created)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) GetWatchlistBySymbol(ctx context.Context, symbol string) (*Watchlist, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, symbol, created_at FROM watchlist WHERE symbol=?
`, symbol)
	var (
		w       Watchlist
		created string
	)
	if err := row.Scan(&w.ID, &w.Symbol, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	w.CreatedAt, _ = time.Parse(timeWire, created)
	return &w, nil
}

// DeleteWatchlist removes a symbol, reporting whether a row existed.
func (s *Store) DeleteWatchlist(ctx context.Context, symbol string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol=?`, symbol)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
