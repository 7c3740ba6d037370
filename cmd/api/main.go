package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/app"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/clock"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/config"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/logger"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/storage/postgres"
	transporthttp "github.com/Shaikh-Shayan/NFT-FestivTicket/internal/transport/http"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	clk := clock.NewSystem()
	ledgerRepo := postgres.NewLedgerRepository(pool)
	ledgerSvc := app.NewLedgerService(ledgerRepo, clk)
	accountRepo := postgres.NewAccountRepository(pool)
	accountSvc := app.NewAccountService(accountRepo, clk)
	marketRepo := postgres.NewMarketRepository(pool)
	marketSvc := app.NewMarketService(marketRepo, ledgerSvc, accountSvc, clk, cfg.Market)
	eventRepo := postgres.NewEventRepository(pool)

	if err := marketSvc.Bootstrap(startupCtx); err != nil {
		log.WithError(err).Fatal("bootstrap marketplace")
	}
	log.WithFields(logrus.Fields{
		"market":      cfg.Market.Key,
		"marketplace": marketSvc.Account(),
		"organizer":   marketSvc.Organizer(),
	}).Info("marketplace ready")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/markets", transporthttp.HandleRegisterMarket(ledgerSvc))
	mux.Handle("/markets/", transporthttp.HandleMarketTree(ledgerSvc, marketSvc))
	mux.Handle("/approvals", transporthttp.HandleApprovals(ledgerSvc))
	mux.Handle("/tokens/", transporthttp.HandleTokens(ledgerSvc))
	mux.Handle("/accounts/", transporthttp.HandleBalances(ledgerSvc))
	mux.Handle("/events", transporthttp.HandleEvents(eventRepo))
	mux.Handle("/admin/accounts", transporthttp.HandleAdminCreateAccount(accountSvc))
	mux.Handle("/admin/accounts/", transporthttp.HandleAdminAccounts(accountSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, transporthttp.Identity(mux)),
		log,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
