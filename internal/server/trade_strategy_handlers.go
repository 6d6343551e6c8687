package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/internal/ledger"
)

type tradeStrategyCreateRequest struct {
	Symbol     string `json:"symbol" binding:"required,max=15"`
	StrategyID int64  `json:"strategy_id" binding:"required"`
	Timestamp  string `json:"timestamp"`
}

type tradeStrategyUpdateRequest struct {
	Symbol     *string `json:"symbol" binding:"omitempty,max=15"`
	StrategyID *int64  `json:"strategy_id"`
	Timestamp  *string `json:"timestamp"`
}

type tradeStrategyListResponse struct {
	TradeStrategies []ledger.TradeStrategy `json:"trade_strategies"`
}

func (s *Server) handleTradeStrategyList(c *gin.Context) {
	includeDeleted := c.DefaultQuery("include_deleted", "true") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := s.store.ListTradeStrategies(ctx, includeDeleted)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if items == nil {
		items = []ledger.TradeStrategy{}
	}
	respondData(c, http.StatusOK, tradeStrategyListResponse{TradeStrategies: items})
}

func (s *Server) handleTradeStrategyCreate(c *gin.Context) {
	var req tradeStrategyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid trade strategy payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ts, err := s.store.CreateTradeStrategy(ctx, req.Symbol, req.StrategyID, req.Timestamp)
	if err != nil {
		if errors.Is(err, ledger.ErrStrategyNotFound) {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Strategy with id %d does not exist", req.StrategyID))
			return
		}
		s.storeFailure(c, err)
		return
	}
	respondData(c, http.StatusCreated, ts)
}

func tradeStrategyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("tradeStrategyID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusUnprocessableEntity, "invalid trade strategy id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleTradeStrategyUpdate(c *gin.Context) {
	id, ok := tradeStrategyID(c)
	if !ok {
		return
	}
	var req tradeStrategyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid trade strategy payload")
		return
	}
	if req.Symbol == nil && req.StrategyID == nil && req.Timestamp == nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid trade strategy payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ts, err := s.store.UpdateTradeStrategy(ctx, id, ledger.TradeStrategyUpdate{
		Symbol:     req.Symbol,
		StrategyID: req.StrategyID,
		Interval:   req.Timestamp,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrStrategyNotFound) {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Strategy with id %d does not exist", derefInt64(req.StrategyID)))
			return
		}
		s.storeFailure(c, err)
		return
	}
	if ts == nil {
		respondError(c, http.StatusNotFound, "trade strategy not found")
		return
	}
	respondData(c, http.StatusOK, ts)
}

func (s *Server) handleTradeStrategyDelete(c *gin.Context) {
	id, ok := tradeStrategyID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ts, err := s.store.SoftDeleteTradeStrategy(ctx, id)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if ts == nil {
		respondError(c, http.StatusNotFound, "trade strategy not found")
		return
	}
	respondMessage(c, http.StatusOK, fmt.Sprintf("Trade strategy '%s' soft deleted successfully", ts.Symbol), struct{}{})
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
