package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/internal/ledger"
)

type watchlistCreateRequest struct {
	Symbol string `json:"symbol" binding:"required,max=10"`
}

type watchlistListResponse struct {
	Watchlists    []ledger.Watchlist `json:"watchlists"`
	UniqueSymbols []string           `json:"unique_symbols"`
}

func (s *Server) handleWatchlistList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := s.store.GetWatchlists(ctx)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if items == nil {
		items = []ledger.Watchlist{}
	}
	symbols := make([]string, 0, len(items))
	for _, w := range items {
		symbols = append(symbols, w.Symbol)
	}
	sort.Strings(symbols)
	respondData(c, http.StatusOK, watchlistListResponse{Watchlists: items, UniqueSymbols: symbols})
}

func (s *Server) handleWatchlistCreate(c *gin.Context) {
	var req watchlistCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid watchlist payload")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		respondError(c, http.StatusUnprocessableEntity, "invalid watchlist payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	existing, err := s.store.GetWatchlistBySymbol(ctx, symbol)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if existing != nil {
		respondError(c, http.StatusBadRequest, "symbol already in watchlist")
		return
	}
	entry, err := s.store.CreateWatchlist(ctx, symbol)
	if err != nil {
		if errors.Is(err, ledger.ErrSymbolWatched) {
			respondError(c, http.StatusBadRequest, "symbol already in watchlist")
			return
		}
		s.storeFailure(c, err)
		return
	}
	respondData(c, http.StatusCreated, entry)
}

func (s *Server) handleWatchlistDelete(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deleted, err := s.store.DeleteWatchlist(ctx, symbol)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "symbol not in watchlist")
		return
	}
	respondMessage(c, http.StatusOK, "watchlist entry deleted", struct{}{})
}
