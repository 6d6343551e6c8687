// Package server exposes the trading sandbox over HTTP: auth, orders,
// market price lookup, and the watchlist/log/strategy bookkeeping.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/newsly/sandbox/internal/ledger"
	"github.com/newsly/sandbox/internal/orders"
)

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Server struct {
	cfg     Config
	store   *ledger.Store
	manager *orders.Manager
	prices  orders.PriceSource
	log     *logrus.Logger
}

// New wires the handlers around externally constructed collaborators. The
// server does not own the store lifecycle; the caller closes it.
func New(cfg Config, store *ledger.Store, manager *orders.Manager, prices orders.PriceSource, log *logrus.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if store == nil || manager == nil || prices == nil {
		return nil, errors.New("store, manager and price source are required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, store: store, manager: manager, prices: prices, log: log}, nil
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealthz)

	auth := r.Group("/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)

	users := r.Group("/users", s.authRequired())
	users.GET("/me", s.handleMe)

	order := r.Group("/order", s.authRequired())
	order.POST("", s.handleOrderCreate)
	order.DELETE("", s.handleOrderClose)
	order.GET("", s.handleOrderList)

	market := r.Group("/market")
	market.GET("/price/:symbol", s.handleMarketPrice)

	watchlist := r.Group("/watchlist", s.authRequired())
	watchlist.GET("", s.handleWatchlistList)
	watchlist.POST("", s.handleWatchlistCreate)
	watchlist.DELETE("/:symbol", s.handleWatchlistDelete)

	logs := r.Group("/log", s.authRequired())
	logs.POST("", s.handleLogCreate)
	logs.GET("", s.handleLogList)

	strategy := r.Group("/strategy", s.authRequired())
	strategy.GET("", s.handleStrategyList)
	strategy.POST("", s.handleStrategyCreate)
	strategy.PUT("/:strategyID", s.handleStrategyUpdate)
	strategy.DELETE("/:strategyID", s.handleStrategyDelete)

	tradeStrategy := r.Group("/trade-strategy", s.authRequired())
	tradeStrategy.GET("", s.handleTradeStrategyList)
	tradeStrategy.POST("", s.handleTradeStrategyCreate)
	tradeStrategy.PUT("/:tradeStrategyID", s.handleTradeStrategyUpdate)
	tradeStrategy.DELETE("/:tradeStrategyID", s.handleTradeStrategyDelete)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		respondError(c, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	c.Status(http.StatusOK)
}
