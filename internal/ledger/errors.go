package ledger

import (
	"errors"
	"strings"
)

// Stable caller-facing message strings. Handlers return these verbatim so
// clients can match on them.
const (
	MsgInsufficientBalance = "insufficient balance"
	MsgDuplicateOrder      = "rejection"
	MsgOrderNotFound       = "order not found"
	MsgOrderClosed         = "sell order complete"
)

var (
	// ErrInsufficientBalance is returned by OpenPosition when the owner's
	// balance cannot cover price*quantity. No write occurs.
	ErrInsufficientBalance = errors.New(MsgInsufficientBalance)

	// ErrDuplicatePosition is returned by OpenPosition when an active
	// position already exists for the (owner, symbol) pair.
	ErrDuplicatePosition = errors.New(MsgDuplicateOrder)

	// ErrOrderNotFound is returned by ClosePosition when no active position
	// exists for the (owner, symbol) pair.
	ErrOrderNotFound = errors.New(MsgOrderNotFound)

	// ErrUserNotFound is returned when the owner id has no user row.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by CreateUser when the email already has a
	// row. Raced inserts land on the UNIQUE constraint and map here too.
	ErrEmailTaken = errors.New("email already registered")

	// ErrSymbolWatched is the watchlist equivalent of ErrEmailTaken.
	ErrSymbolWatched = errors.New("symbol already in watchlist")

	// ErrStrategyNotFound is returned when a trade strategy references a
	// strategy id with no row, surfaced by the foreign key constraint.
	ErrStrategyNotFound = errors.New("strategy does not exist")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
