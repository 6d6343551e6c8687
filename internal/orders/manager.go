// Package orders sequences price lookup and the atomic ledger operations,
// and derives the read-only display fields for listings.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/newsly/sandbox/internal/ledger"
)

var (
	// ErrValidation marks bad input shape. No I/O has been attempted.
	ErrValidation = errors.New("validation failed")

	// ErrPriceUnavailable collapses the three price-source failure kinds.
	// The underlying kind is logged, not surfaced.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrIndeterminate marks a store operation whose outcome is unknown
	// (timeout mid-operation). It must not be retried blindly: a retry of a
	// completed open would double-charge the balance.
	ErrIndeterminate = errors.New("operation outcome unknown")
)

const maxSymbolLen = 10

// PriceSource supplies the current market price for a symbol.
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Manager orchestrates balance checks, duplicate checks and the atomic
// ledger mutations. It performs exactly one price fetch and at most one
// store mutation per invocation, with no internal retries.
type Manager struct {
	store  *ledger.Store
	prices PriceSource
	log    *logrus.Entry
}

func NewManager(store *ledger.Store, prices PriceSource, log *logrus.Logger) *Manager {
	return &Manager{
		store:  store,
		prices: prices,
		log:    log.WithField("component", "orders"),
	}
}

func validateSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || len(symbol) > maxSymbolLen {
		return "", pkgerrors.Wrapf(ErrValidation, "invalid symbol %q", symbol)
	}
	return strings.ToUpper(symbol), nil
}

// OpenPosition opens a simulated buy for the owner at the current market
// price. Ledger domain errors propagate verbatim.
func (m *Manager) OpenPosition(ctx context.Context, userID int64, symbol string, quantity decimal.Decimal) (*ledger.Transaction, error) {
	symbol, err := validateSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, pkgerrors.Wrapf(ErrValidation, "quantity must be positive, got %s", quantity)
	}

	price, err := m.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		m.log.WithError(err).WithField("symbol", symbol).Warn("price fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
	}

	t, err := m.store.OpenPosition(ctx, userID, symbol, quantity, price)
	if err != nil {
		return nil, m.translateStoreErr(err, "open", symbol)
	}
	return t, nil
}

// ClosePosition closes the owner's active position for the symbol at the
// current market price.
func (m *Manager) ClosePosition(ctx context.Context, userID int64, symbol string) (*ledger.Transaction, error) {
	symbol, err := validateSymbol(symbol)
	if err != nil {
		return nil, err
	}

	price, err := m.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		m.log.WithError(err).WithField("symbol", symbol).Warn("price fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
	}

	t, err := m.store.ClosePosition(ctx, userID, symbol, price)
	if err != nil {
		return nil, m.translateStoreErr(err, "close", symbol)
	}
	return t, nil
}

// Listing is the projected view of a user's transactions.
type Listing struct {
	Orders        []ProjectedTransaction `json:"orders"`
	UniqueSymbols []string               `json:"unique_symbols"`
}

// ListPositions projects the owner's transactions. The unique-symbol set is
// computed over the full history regardless of the filter.
func (m *Manager) ListPositions(ctx context.Context, userID int64, activeOnly bool, symbol string) (*Listing, error) {
	if symbol != "" {
		var err error
		if symbol, err = validateSymbol(symbol); err != nil {
			return nil, err
		}
	}

	txs, err := m.store.ListTransactions(ctx, userID, ledger.TransactionFilter{ActiveOnly: activeOnly, Symbol: symbol})
	if err != nil {
		return nil, m.translateStoreErr(err, "list", symbol)
	}

	all := txs
	if activeOnly || symbol != "" {
		if all, err = m.store.ListTransactions(ctx, userID, ledger.TransactionFilter{}); err != nil {
			return nil, m.translateStoreErr(err, "list", symbol)
		}
	}

	orders := make([]ProjectedTransaction, 0, len(txs))
	for _, t := range txs {
		orders = append(orders, Project(t))
	}
	return &Listing{Orders: orders, UniqueSymbols: UniqueSymbols(all)}, nil
}

// translateStoreErr passes domain errors through unchanged and classifies
// infrastructure failures. Timeouts become ErrIndeterminate so the outer
// layer surfaces "unknown outcome" instead of assuming failure.
func (m *Manager) translateStoreErr(err error, op, symbol string) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrDuplicatePosition),
		errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, ledger.ErrUserNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		m.log.WithError(err).WithFields(logrus.Fields{"op": op, "symbol": symbol}).Error("store operation interrupted, outcome unknown")
		return pkgerrors.Wrap(ErrIndeterminate, err.Error())
	default:
		m.log.WithError(err).WithFields(logrus.Fields{"op": op, "symbol": symbol}).Error("store operation failed")
		return err
	}
}
