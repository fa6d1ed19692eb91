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

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/campaigns"
	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/contacts"
	"voiceagent-platform/internal/events"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/reporting"
	"voiceagent-platform/internal/scripts"
	"voiceagent-platform/pkg/logger"
	"voiceagent-platform/pkg/utils"

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Persistence: postgres when configured, in-memory otherwise.
	var (
		callRepo     calls.Repository
		contactRepo  contacts.Repository
		scriptRepo   scripts.Repository
		campaignRepo campaigns.Repository
	)
	switch cfg.Store.Driver {
	case "postgres":
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		callRepo = calls.NewPostgresRepo(db)
		contactRepo = contacts.NewPostgresRepo(db)
		scriptRepo = scripts.NewPostgresRepo(db)
		campaignRepo = campaigns.NewPostgresRepo(db)
	default:
		callRepo = calls.NewMemoryRepo()
		contactRepo = contacts.NewMemoryRepo()
		scriptRepo = scripts.NewMemoryRepo()
		campaignRepo = campaigns.NewMemoryRepo()
	}

	// Redis is optional; without it the recent-dial guard is disabled.
	var throttle *calls.DialThrottle
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		throttle = calls.NewDialThrottle(rdb, cfg.Redis.DialThrottleWindow)
	}

	providerClient := provider.NewClient(cfg.Voice.BaseURL, cfg.Voice.APIKey)
	if !providerClient.Configured() {
		log.Warn("voice provider credential missing; calls will use the mock path")
	}

	dispatcher := calls.NewDispatcher(calls.DispatcherDeps{
		Repo:               callRepo,
		Contacts:           contactRepo,
		Scripts:            scriptRepo,
		Provider:           providerClient,
		Defaults:           cfg.AgentDefaults(),
		DefaultCountryCode: cfg.Store.DefaultCountryCode,
		Throttle:           throttle,
		Log:                log,
	})
	runner := campaigns.NewRunner(campaigns.RunnerDeps{
		Campaigns:          campaignRepo,
		Contacts:           contactRepo,
		Scripts:            scriptRepo,
		Calls:              callRepo,
		Dispatcher:         dispatcher,
		DefaultCountryCode: cfg.Store.DefaultCountryCode,
		Log:                log,
	})
	webhook := &events.WebhookHandler{
		Calls:    callRepo,
		Trace:    events.NewMemoryLog(),
		Throttle: throttle,
		Log:      log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Webhook:    webhook,
		Dispatcher: dispatcher,
		Calls:      callRepo,
		Runner:     runner,
		Reports:    reporting.NewService(callRepo),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver)
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
