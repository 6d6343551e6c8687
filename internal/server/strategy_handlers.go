package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/internal/ledger"
)

type strategyRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Config string `json:"config" binding:"required"`
}

func (s *Server) handleStrategyList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := s.store.ListStrategies(ctx, currentUserID(c))
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if items == nil {
		items = []ledger.Strategy{}
	}
	respondData(c, http.StatusOK, items)
}

func (s *Server) handleStrategyCreate(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid strategy payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	st, err := s.store.CreateStrategy(ctx, currentUserID(c), req.Name, req.Config)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	respondData(c, http.StatusCreated, st)
}

func strategyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("strategyID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusUnprocessableEntity, "invalid strategy id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleStrategyUpdate(c *gin.Context) {
	id, ok := strategyID(c)
	if !ok {
		return
	}
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid strategy payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := s.store.UpdateStrategy(ctx, currentUserID(c), id, req.Name, req.Config)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if !updated {
		respondError(c, http.StatusNotFound, "strategy not found")
		return
	}
	st, err := s.store.GetStrategy(ctx, currentUserID(c), id)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	respondData(c, http.StatusOK, st)
}

func (s *Server) handleStrategyDelete(c *gin.Context) {
	id, ok := strategyID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deleted, err := s.store.DeleteStrategy(ctx, currentUserID(c), id)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "strategy not found")
		return
	}
	respondMessage(c, http.StatusOK, "strategy deleted", struct{}{})
}
