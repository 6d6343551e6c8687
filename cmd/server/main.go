package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/newsly/sandbox/internal/ledger"
	"github.com/newsly/sandbox/internal/orders"
	"github.com/newsly/sandbox/internal/server"
	"github.com/newsly/sandbox/pkg/config"
	"github.com/newsly/sandbox/pkg/logger"
	"github.com/newsly/sandbox/pkg/pricefeed"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("SANDBOX_CONFIG"), "YAML config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("open ledger store")
	}
	defer store.Close()

	prices := pricefeed.New(cfg.BinanceAPIURL, time.Duration(cfg.PriceTimeoutSecs)*time.Second)
	manager := orders.NewManager(store, prices, log)

	// orders settle at fresh prices; only the quote endpoint reads the cache
	quotes := pricefeed.NewCached(prices, time.Duration(cfg.QuoteCacheSecs)*time.Second)

	srv, err := server.New(server.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.JWTExpiresMinutes) * time.Minute,
	}, store, manager, quotes, log)
	if err != nil {
		log.WithError(err).Fatal("init server")
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("trading sandbox listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server error")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	log.Info("server stopped")
}
