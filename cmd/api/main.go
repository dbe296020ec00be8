package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exchange-crm/internal/audit"
	"exchange-crm/internal/auth"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/clients"
	"exchange-crm/internal/config"
	"exchange-crm/internal/httpapi"
	"exchange-crm/internal/offices"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/reporting"
	"exchange-crm/internal/transactions"
	"exchange-crm/internal/users"
	"exchange-crm/pkg/logger"
	"exchange-crm/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := auth.NewCodec(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	loginLimiter, err := utils.NewFixedWindowLimiter(rdb, "login", cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	if err != nil {
		log.Error("limiter init failed", "err", err)
		os.Exit(1)
	}

	// Audit sits under login, admin actions, recommendations and
	// data-integrity flags; memory-backed until the Postgres table lands.
	auditRepo := audit.NewMemoryRepo()
	auditSvc := audit.NewService(auditRepo)

	userRepo := users.NewRepository(db)
	clientRepo := clients.NewRepository(db)
	txRepo := transactions.NewRepository(db)
	officeRepo := offices.NewRepository(db)
	rateRepo := &rates.MemoryRepo{}
	campaignRepo := campaigns.NewMemoryRepo()

	authSvc := auth.NewService(codec, userRepo, loginLimiter, auditSvc)
	resolver := auth.NewResolver(codec, userRepo)

	usersSvc := users.NewService(userRepo, auditSvc)
	clientsSvc := clients.NewService(clientRepo, auditSvc)
	ratesSvc := rates.NewService(rateRepo)
	txSvc := transactions.NewService(txRepo, clientRepo, ratesSvc, auditSvc)
	campaignsSvc := campaigns.NewService(campaignRepo, clientsSvc, campaigns.AuditAdapter{Audit: auditSvc})
	reportingSvc := reporting.NewService(txRepo, campaignRepo, auditRepo)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:         authSvc,
		Users:        usersSvc,
		Clients:      clientsSvc,
		Transactions: txSvc,
		Campaigns:    campaignsSvc,
		Rates:        ratesSvc,
		Reporting:    reportingSvc,
		Offices:      officeRepo,
	}
	registerRoutes(r, h, auth.RequirePrincipal(resolver))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
