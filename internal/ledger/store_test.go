package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestCreateUserStartsWithZeroBalance(t *testing.T) {
	s := newTestStore(t)

	u, err := s.CreateUser(context.Background(), "new@example.com", "hash")
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(decimal.Zero))

	loaded, err := s.GetUserWithBalance(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.Balance.Equal(decimal.Zero))
	require.Equal(t, "new@example.com", loaded.Email)
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, hash, err := s.GetUserByEmail(ctx, "missing@example.com")
	require.NoError(t, err)
	require.Nil(t, u)
	require.Empty(t, hash)

	created, err := s.CreateUser(ctx, "known@example.com", "stored-hash")
	require.NoError(t, err)

	u, hash, err = s.GetUserByEmail(ctx, "known@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, created.ID, u.ID)
	require.Equal(t, "stored-hash", hash)
}

func TestCreateUserDuplicateEmailFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "dup@example.com", "h1")
	require.NoError(t, err)
	// the UNIQUE constraint maps to the domain error so handlers can reject
	// raced registrations with 400 instead of 500
	_, err = s.CreateUser(ctx, "dup@example.com", "h2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestWatchlistCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry, err := s.CreateWatchlist(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, "BTCUSDT", entry.Symbol)

	_, err = s.CreateWatchlist(ctx, "BTCUSDT")
	require.ErrorIs(t, err, ErrSymbolWatched)

	got, err := s.GetWatchlistBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.NotNil(t, got)

	items, err := s.GetWatchlists(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	deleted, err := s.DeleteWatchlist(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.DeleteWatchlist(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestLogsAreOpaqueAndOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s, "0")

	_, err := s.CreateLog(ctx, userID, `{"event":"first"}`)
	require.NoError(t, err)
	_, err = s.CreateLog(ctx, userID, `{"event":"second"}`)
	require.NoError(t, err)

	entries, err := s.ListLogs(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, `{"event":"second"}`, entries[0].Payload)
	require.Equal(t, `{"event":"first"}`, entries[1].Payload)
}

func TestStrategySoftDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s, "0")

	st, err := s.CreateStrategy(ctx, userID, "sma-cross", `{"fast":9,"slow":21}`)
	require.NoError(t, err)

	updated, err := s.UpdateStrategy(ctx, userID, st.ID, "sma-cross-v2", `{"fast":12,"slow":26}`)
	require.NoError(t, err)
	require.True(t, updated)

	loaded, err := s.GetStrategy(ctx, userID, st.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "sma-cross-v2", loaded.Name)

	deleted, err := s.DeleteStrategy(ctx, userID, st.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// soft-deleted rows disappear from every query
	loaded, err = s.GetStrategy(ctx, userID, st.ID)
	require.NoError(t, err)
	require.Nil(t, loaded)

	items, err := s.ListStrategies(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, items)

	updated, err = s.UpdateStrategy(ctx, userID, st.ID, "x", "{}")
	require.NoError(t, err)
	require.False(t, updated)
}
