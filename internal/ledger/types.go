package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// timeWire is the stored timestamp layout. The fraction is fixed width so
// that TEXT comparison orders the same way the instants do.
const timeWire = "2006-01-02T15:04:05.000000000Z07:00"

// Transaction status wire encoding. These values are persisted and returned
// to clients as-is; no other value is ever written.
const (
	StatusOpen   = 1
	StatusClosed = 2
)

type User struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is one simulated buy-then-sell cycle for a symbol.
// SellPrice is nil exactly while Status == StatusOpen.
type Transaction struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Symbol    string           `json:"symbol"`
	BuyPrice  decimal.Decimal  `json:"buy_price"`
	SellPrice *decimal.Decimal `json:"sell_price,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Status    int              `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Watchlist struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

// LogEntry carries an opaque payload; the ledger never interprets its
// structure.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

type Strategy struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Config    string     `json:"config"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// TradeStrategy binds a symbol to a strategy at a candle interval. Unlike
// Strategy rows these are global, not per-user, and listings include
// soft-deleted rows unless asked otherwise.
type TradeStrategy struct {
	ID         int64      `json:"id"`
	Symbol     string     `json:"symbol"`
	StrategyID int64      `json:"strategy_id"`
	Interval   string     `json:"timestamp"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// TradeStrategyUpdate carries the fields to rewrite; nil means keep.
type TradeStrategyUpdate struct {
	Symbol     *string
	StrategyID *int64
	Interval   *string
}

// TransactionFilter narrows ListTransactions. Zero value means no filtering.
type TransactionFilter struct {
	ActiveOnly bool
	Symbol     string
}
