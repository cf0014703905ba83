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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"insurance-portal/internal/adapter/gateway"
	httpadp "insurance-portal/internal/adapter/http"
	"insurance-portal/internal/adapter/repository/gormrepo"
	"insurance-portal/internal/config"
	"insurance-portal/internal/infrastructure/cache"
	"insurance-portal/internal/infrastructure/db"
	"insurance-portal/internal/usecase/auth"
	claimuc "insurance-portal/internal/usecase/claim"
	"insurance-portal/internal/usecase/dashboard"
	enrollmentuc "insurance-portal/internal/usecase/enrollment"
	policyuc "insurance-portal/internal/usecase/policy"
	ticketuc "insurance-portal/internal/usecase/ticket"
	useruc "insurance-portal/internal/usecase/user"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal("config", err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		fatal("database", err)
	}
	if err := db.Migrate(gdb); err != nil {
		fatal("migrate", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		fatal("redis", err)
	}
	views := cache.NewViews(rdb, cfg.ViewTTL)

	gw := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL, Debug: cfg.GatewayDebug})

	sessions := gormrepo.NewSessionRepository(gdb)
	authUC := auth.NewUsecase(gw, sessions, gormrepo.NewGormUoW(gdb), cfg.SessionTTL)
	policies := policyuc.NewUsecase(gw, views)
	enrollments := enrollmentuc.NewUsecase(gw, views)
	claims := claimuc.NewUsecase(gw, enrollments, views)
	tickets := ticketuc.NewUsecase(gw, views)
	users := useruc.NewUsecase(gw, views)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dashboards := dashboard.NewRegistry(ctx, dashboard.Factory(gw, views, cfg.DashboardRefresh))
	defer dashboards.StopAll()

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 1h", func() {
		n, err := authUC.Sweep(ctx)
		if err != nil {
			slog.Warn("session sweep failed", "err", err)
			return
		}
		stopped := dashboards.Prune(ctx, authUC.CurrentSession)
		slog.Info("session sweep", "removed", n, "dashboards_stopped", stopped)
	}); err != nil {
		fatal("cron", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	sqlDB, err := gdb.DB()
	if err != nil {
		fatal("database", err)
	}
	h := httpadp.NewHandler(
		httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
		httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Router{
		Health:    h,
		Auth:      httpadp.NewAuthHandler(authUC, views, dashboards),
		Public:    httpadp.NewPublicHandler(policies),
		Dashboard: httpadp.NewDashboardHandler(dashboards),
		Customer:  httpadp.NewCustomerHandler(policies, enrollments, claims, tickets, users),
		Admin:     httpadp.NewAdminHandler(policies, enrollments, claims, tickets, users),
		Sessions:  authUC,
		Redis:     rdb,
		IdempTTL:  cfg.IdempotencyTTL(),
	}.Mount(e)

	addr := ":" + cfg.AppPort
	go func() {
		slog.Info("listening", "addr", addr, "api", cfg.APIBaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server", err)
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		slog.Error("shutdown", "err", err)
	}
	_ = rdb.Close()
}

func fatal(what string, err error) {
	slog.Error(what, "err", err)
	os.Exit(1)
}
