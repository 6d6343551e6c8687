package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (email, password, balance, created_at)
VALUES (?,?,?,?)
`, email, passwordHash, "0", now.Format(timeWire))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Email: email, Balance: decimal.Zero, CreatedAt: now}, nil
}

// GetUserByEmail returns the user row plus the stored password hash.
// Returns (nil, "", nil) when the email is unknown.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, string, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, password, balance, created_at
FROM users WHERE email=?
`, email)
	var (
		u       User
		hash    string
		balance string
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &balance, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	var err error
	u.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, "", fmt.Errorf("parse balance: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeWire, created)
	return &u, hash, nil
}

// GetUserWithBalance reads a single user row. Returns (nil, nil) when the id
// is unknown.
func (s *Store) GetUserWithBalance(ctx context.Context, userID int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, balance, created_at
FROM users WHERE id=?
`, userID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u       User
		balance string
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &balance, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	u.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeWire, created)
	return &u, nil
}

// applyBalanceDelta adjusts a user's balance by a signed delta inside an
// existing transaction. Positive credits, negative debits. It is the only
// balance write in the package and is never exposed outside a compound
// operation.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var current string
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id=?`, userID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	bal, err := decimal.NewFromString(current)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}
	next := bal.Add(delta)
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance=? WHERE id=?`, next.String(), userID); err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}
	return next, nil
}
