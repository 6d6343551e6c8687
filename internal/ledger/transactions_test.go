package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedUser creates a user and sets the balance directly, the way an operator
// funds a sandbox account.
func seedUser(t *testing.T, s *Store, balance string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "trader@example.com", "hash")
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE users SET balance=? WHERE id=?`, balance, u.ID)
	require.NoError(t, err)
	return u.ID
}

func balanceOf(t *testing.T, s *Store, userID int64) decimal.Decimal {
	t.Helper()
	u, err := s.GetUserWithBalance(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Balance
}

func countTransactions(t *testing.T, s *Store, userID int64) int {
	t.Helper()
	txs, err := s.ListTransactions(context.Background(), userID, TransactionFilter{})
	require.NoError(t, err)
	return len(txs)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOpenPositionInsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000.00000000000000000000")

	_, err := s.OpenPosition(context.Background(), userID, "ETHUSDT", dec("1"), dec("3000"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.True(t, balanceOf(t, s, userID).Equal(dec("1000")), "balance must be unchanged")
	require.Equal(t, 0, countTransactions(t, s, userID), "no position row may exist")
}

func TestOpenPositionDebitsBalanceAndCreatesActiveRow(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000")

	tx, err := s.OpenPosition(context.Background(), userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.NoError(t, err)
	require.Equal(t, StatusOpen, tx.Status)
	require.Nil(t, tx.SellPrice)
	require.True(t, tx.BuyPrice.Equal(dec("3000")))
	require.True(t, tx.Quantity.Equal(dec("0.1")))

	require.True(t, balanceOf(t, s, userID).Equal(dec("700")))
}

func TestOpenPositionDuplicateRejectedWithoutSideEffects(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000")

	_, err := s.OpenPosition(context.Background(), userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.NoError(t, err)

	_, err = s.OpenPosition(context.Background(), userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.ErrorIs(t, err, ErrDuplicatePosition)

	require.True(t, balanceOf(t, s, userID).Equal(dec("700")), "balance must be unchanged by the rejected open")
	require.Equal(t, 1, countTransactions(t, s, userID))
}

func TestOpenPositionAllowedAfterClose(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000")
	ctx := context.Background()

	_, err := s.OpenPosition(ctx, userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.NoError(t, err)
	_, err = s.ClosePosition(ctx, userID, "ETHUSDT", dec("3100"))
	require.NoError(t, err)

	_, err = s.OpenPosition(ctx, userID, "ETHUSDT", dec("0.1"), dec("3100"))
	require.NoError(t, err)
}

func TestClosePositionRoundTripBalance(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000")
	ctx := context.Background()

	_, err := s.OpenPosition(ctx, userID, "BTCUSDT", dec("0.1"), dec("50000.5"))
	require.NoError(t, err)

	closed, err := s.ClosePosition(ctx, userID, "BTCUSDT", dec("51000.5"))
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.SellPrice)
	require.True(t, closed.SellPrice.Equal(dec("51000.5")))

	// 1000 - 50000.5*0.1 + 51000.5*0.1 = 1100
	require.True(t, balanceOf(t, s, userID).Equal(dec("1100")))
}

func TestClosePositionWithoutOpenReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000")

	_, err := s.ClosePosition(context.Background(), userID, "BTCUSDT", dec("50000"))
	require.ErrorIs(t, err, ErrOrderNotFound)
	require.True(t, balanceOf(t, s, userID).Equal(dec("1000")))
}

// The full scenario: reject on insufficient balance, open, reject duplicate,
// close with profit.
func TestOpenCloseScenario(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000.00000000000000000000")
	ctx := context.Background()

	_, err := s.OpenPosition(ctx, userID, "ETHUSDT", dec("1"), dec("3000"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.True(t, balanceOf(t, s, userID).Equal(dec("1000")))

	opened, err := s.OpenPosition(ctx, userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.NoError(t, err)
	require.True(t, balanceOf(t, s, userID).Equal(dec("700")))
	require.Equal(t, StatusOpen, opened.Status)

	_, err = s.OpenPosition(ctx, userID, "ETHUSDT", dec("0.1"), dec("3000"))
	require.ErrorIs(t, err, ErrDuplicatePosition)
	require.True(t, balanceOf(t, s, userID).Equal(dec("700")))

	closed, err := s.ClosePosition(ctx, userID, "ETHUSDT", dec("3200"))
	require.NoError(t, err)
	require.True(t, balanceOf(t, s, userID).Equal(dec("1020")))
	require.Equal(t, StatusClosed, closed.Status)
	require.True(t, closed.SellPrice.Equal(dec("3200")))
}

func TestConcurrentOpensProduceExactlyOneSuccess(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "10000")
	ctx := context.Background()

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.OpenPosition(ctx, userID, "BTCUSDT", dec("0.1"), dec("50000"))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, ErrDuplicatePosition)
		}
	}
	require.Equal(t, 1, successes, "exactly one racing open may succeed")
	require.True(t, balanceOf(t, s, userID).Equal(dec("5000")))
	require.Equal(t, 1, countTransactions(t, s, userID))
}

func TestListTransactionsOrderingAndFilters(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000000")
	ctx := context.Background()

	_, err := s.OpenPosition(ctx, userID, "BTCUSDT", dec("0.1"), dec("50000"))
	require.NoError(t, err)
	_, err = s.ClosePosition(ctx, userID, "BTCUSDT", dec("51000"))
	require.NoError(t, err)
	_, err = s.OpenPosition(ctx, userID, "ETHUSDT", dec("1"), dec("3000"))
	require.NoError(t, err)
	_, err = s.OpenPosition(ctx, userID, "SOLUSDT", dec("10"), dec("150"))
	require.NoError(t, err)

	all, err := s.ListTransactions(ctx, userID, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// open rows first (newest first within the group), closed rows last
	require.Equal(t, StatusOpen, all[0].Status)
	require.Equal(t, "SOLUSDT", all[0].Symbol)
	require.Equal(t, StatusOpen, all[1].Status)
	require.Equal(t, "ETHUSDT", all[1].Symbol)
	require.Equal(t, StatusClosed, all[2].Status)
	require.Equal(t, "BTCUSDT", all[2].Symbol)

	active, err := s.ListTransactions(ctx, userID, TransactionFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, tx := range active {
		require.Equal(t, StatusOpen, tx.Status)
	}

	btc, err := s.ListTransactions(ctx, userID, TransactionFilter{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	require.Len(t, btc, 1)
	require.Equal(t, StatusClosed, btc[0].Status)

	none, err := s.ListTransactions(ctx, userID, TransactionFilter{ActiveOnly: true, Symbol: "BTCUSDT"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestBalancePrecisionPreserved(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "1000.12345678901234567890")

	_, err := s.OpenPosition(context.Background(), userID, "BTCUSDT", dec("0.00000000000000000001"), dec("1"))
	require.NoError(t, err)

	want := dec("1000.12345678901234567890").Sub(dec("0.00000000000000000001"))
	require.True(t, balanceOf(t, s, userID).Equal(want))
}
