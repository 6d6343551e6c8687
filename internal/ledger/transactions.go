package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OpenPosition creates an active transaction for (userID, symbol) and debits
// buy_price*quantity from the balance, indivisibly. Both preconditions are
// evaluated against the same snapshot before any write:
//
//   - balance >= price*quantity, else ErrInsufficientBalance
//   - no active transaction for (userID, symbol), else ErrDuplicatePosition
//
// On any error nothing is written.
func (s *Store) OpenPosition(ctx context.Context, userID int64, symbol string, quantity, price decimal.Decimal) (*Transaction, error) {
	cost := price.Mul(quantity)

	var out *Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var balanceStr string
		if err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id=?`, userID).Scan(&balanceStr); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return fmt.Errorf("parse balance: %w", err)
		}
		if balance.LessThan(cost) {
			return ErrInsufficientBalance
		}

		var existing int64
		err = tx.QueryRowContext(ctx, `
SELECT id FROM transactions WHERE user_id=? AND symbol=? AND status=?
`, userID, symbol, StatusOpen).Scan(&existing)
		if err == nil {
			return ErrDuplicatePosition
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
INSERT INTO transactions (user_id, symbol, buy_price, sell_price, quantity, status, created_at, updated_at)
VALUES (?,?,?,NULL,?,?,?,?)
`, userID, symbol, price.String(), quantity.String(), StatusOpen,
			now.Format(timeWire), now.Format(timeWire))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := applyBalanceDelta(ctx, tx, userID, cost.Neg()); err != nil {
			return err
		}

		out = &Transaction{
			ID:        id,
			UserID:    userID,
			Symbol:    symbol,
			BuyPrice:  price,
			Quantity:  quantity,
			Status:    StatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClosePosition closes the unique active transaction for (userID, symbol) at
// the given price and credits sell_price*quantity to the balance, with the
// same atomicity guarantee as OpenPosition. Returns ErrOrderNotFound (no
// write) when there is nothing to close.
func (s *Store) ClosePosition(ctx context.Context, userID int64, symbol string, price decimal.Decimal) (*Transaction, error) {
	var out *Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			t        Transaction
			buyPrice string
			quantity string
			created  string
		)
		err := tx.QueryRowContext(ctx, `
SELECT id, user_id, symbol, buy_price, quantity, created_at
FROM transactions WHERE user_id=? AND symbol=? AND status=?
`, userID, symbol, StatusOpen).Scan(&t.ID, &t.UserID, &t.Symbol, &buyPrice, &quantity, &created)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return err
		}
		if t.BuyPrice, err = decimal.NewFromString(buyPrice); err != nil {
			return fmt.Errorf("parse buy_price: %w", err)
		}
		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return fmt.Errorf("parse quantity: %w", err)
		}
		t.CreatedAt, _ = time.Parse(timeWire, created)

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
UPDATE transactions SET sell_price=?, status=?, updated_at=? WHERE id=?
`, price.String(), StatusClosed, now.Format(timeWire), t.ID); err != nil {
			return fmt.Errorf("close transaction: %w", err)
		}
		if _, err := applyBalanceDelta(ctx, tx, userID, price.Mul(t.Quantity)); err != nil {
			return err
		}

		sell := price
		t.SellPrice = &sell
		t.Status = StatusClosed
		t.UpdatedAt = now
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions returns the user's transactions ordered status ASC (open
// before closed), then created_at DESC within each group, id as tiebreaker.
func (s *Store) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]Transaction, error) {
	q := `
SELECT id, user_id, symbol, buy_price, sell_price, quantity, status, created_at, updated_at
FROM transactions WHERE user_id=?`
	args := []any{userID}
	if filter.ActiveOnly {
		q += ` AND status=?`
		args = append(args, StatusOpen)
	}
	if filter.Symbol != "" {
		q += ` AND symbol=?`
		args = append(args, filter.Symbol)
	}
	q += ` ORDER BY status ASC, created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (*Transaction, error) {
	var (
		t        Transaction
		buy      string
		sell     sql.NullString
		quantity string
		created  string
		updated  string
	)
	if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &buy, &sell, &quantity, &t.Status, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if t.BuyPrice, err = decimal.NewFromString(buy); err != nil {
		return nil, fmt.Errorf("parse buy_price: %w", err)
	}
	if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("parse quantity: %w", err)
	}
	if sell.Valid {
		d, err := decimal.NewFromString(sell.String)
		if err != nil {
			return nil, fmt.Errorf("parse sell_price: %w", err)
		}
		t.SellPrice = &d
	}
	t.CreatedAt, _ = time.Parse(timeWire, created)
	t.UpdatedAt, _ = time.Parse(timeWire, updated)
	return &t, nil
}
