package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/pkg/pricefeed"
)

type marketPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (s *Server) handleMarketPrice(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" || len(symbol) > 10 {
		respondError(c, http.StatusUnprocessableEntity, "invalid symbol")
		return
	}

	price, err := s.prices.CurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, pricefeed.ErrConnection) {
			respondError(c, http.StatusServiceUnavailable, pricefeed.ErrConnection.Error())
			return
		}
		s.log.WithError(err).WithField("symbol", symbol).Warn("market price lookup failed")
		respondError(c, http.StatusInternalServerError, pricefeed.ErrInvalidResponse.Error())
		return
	}
	respondData(c, http.StatusOK, marketPriceResponse{Symbol: symbol, Price: price.String()})
}
