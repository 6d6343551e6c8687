package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsly/sandbox/internal/ledger"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid registration payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	existing, _, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if existing != nil {
		respondError(c, http.StatusBadRequest, "email already registered")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to process password")
		return
	}
	user, err := s.store.CreateUser(ctx, req.Email, hash)
	if err != nil {
		// a raced register can slip past the pre-check and land on the
		// UNIQUE constraint
		if errors.Is(err, ledger.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "email already registered")
			return
		}
		s.storeFailure(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid login payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, hash, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if user == nil || !checkPassword(hash, req.Password) {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondData(c, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := s.store.GetUserWithBalance(ctx, currentUserID(c))
	if err != nil {
		s.storeFailure(c, err)
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	respondData(c, http.StatusOK, user)
}

func (s *Server) storeFailure(c *gin.Context, err error) {
	s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("store failure")
	respondError(c, http.StatusInternalServerError, "internal storage error")
}
