package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/internal/ledger"
)

type logCreateRequest struct {
	// Payload is stored opaquely; only JSON well-formedness is checked.
	Payload json.RawMessage `json:"payload" binding:"required"`
}

func (s *Server) handleLogCreate(c *gin.Context) {
	var req logCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid log payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := s.store.CreateLog(ctx, currentUserID(c), string(req.Payload))
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Log created successfully", entry)
}

func (s *Server) handleLogList(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := s.store.ListLogs(ctx, currentUserID(c), limit)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if entries == nil {
		entries = []ledger.LogEntry{}
	}
	respondData(c, http.StatusOK, entries)
}
