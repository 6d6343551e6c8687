package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/newsly/sandbox/internal/ledger"
	"github.com/newsly/sandbox/internal/orders"
	"github.com/newsly/sandbox/pkg/pricefeed"
)

type orderCreateRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

type orderCloseRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (s *Server) handleOrderCreate(c *gin.Context) {
	var req orderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid order payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	t, err := s.manager.OpenPosition(ctx, currentUserID(c), req.Symbol, req.Quantity)
	if err != nil {
		s.respondOrderError(c, err)
		return
	}
	respondData(c, http.StatusCreated, orders.Project(*t))
}

func (s *Server) handleOrderClose(c *gin.Context) {
	var req orderCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid order payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if _, err := s.manager.ClosePosition(ctx, currentUserID(c), req.Symbol); err != nil {
		s.respondOrderError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, ledger.MsgOrderClosed, struct{}{})
}

func (s *Server) handleOrderList(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	symbol := c.Query("symbol")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	listing, err := s.manager.ListPositions(ctx, currentUserID(c), activeOnly, symbol)
	if err != nil {
		s.respondOrderError(c, err)
		return
	}
	respondData(c, http.StatusOK, listing)
}

// respondOrderError maps manager/store errors onto the documented status
// classes: 422 malformed input, 400 domain rejection, 503 transient price
// source outage, 500 anything infrastructural. Domain messages are stable
// strings clients match on.
func (s *Server) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrValidation):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		respondError(c, http.StatusBadRequest, ledger.MsgInsufficientBalance)
	case errors.Is(err, ledger.ErrDuplicatePosition):
		respondError(c, http.StatusBadRequest, ledger.MsgDuplicateOrder)
	case errors.Is(err, ledger.ErrOrderNotFound):
		respondError(c, http.StatusBadRequest, ledger.MsgOrderNotFound)
	case errors.Is(err, ledger.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "user not found")
	case errors.Is(err, orders.ErrPriceUnavailable):
		if errors.Is(err, pricefeed.ErrConnection) {
			respondError(c, http.StatusServiceUnavailable, pricefeed.ErrConnection.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, pricefeed.ErrInvalidResponse.Error())
	case errors.Is(err, orders.ErrIndeterminate):
		respondError(c, http.StatusInternalServerError, "operation outcome unknown, verify before retrying")
	default:
		s.storeFailure(c, err)
	}
}
