package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/httpserver"
	"github.com/sunu-rekolt/marketplace/internal/idempotency"
	"github.com/sunu-rekolt/marketplace/internal/notify"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/search"
	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/storage"
	"github.com/sunu-rekolt/marketplace/pkg/config"
	pkgdb "github.com/sunu-rekolt/marketplace/pkg/db"
	"github.com/sunu-rekolt/marketplace/pkg/events"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	loggingmw "github.com/sunu-rekolt/marketplace/pkg/middleware/logging"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/metrics"
	"github.com/sunu-rekolt/marketplace/pkg/pushclient"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()

	logger := logging.NewWithFile(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	r := repo.New(db)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
	}

	var idem idempotency.Store = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		es, err := search.NewClient(ctx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		cancel()
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unreachable", "error", err)
		} else {
			index = es
		}
	}

	media := storage.NewLocal(cfg.StorageDir, cfg.StoragePublicURL)
	sessions := cart.NewSessions()
	hub := notify.NewHub()

	notifier := &service.NotificationService{
		Repo:   r,
		Push:   pushclient.NewClient(cfg.PushGatewayURL),
		Stream: hub,
	}
	catalog := &service.CatalogService{Repo: r, Index: index, Events: publisher, Notifier: notifier, Media: media}
	checkout := &service.CheckoutService{
		Repo:     r,
		Carts:    sessions,
		Gateway:  service.SimulatedGateway{},
		Idem:     idem,
		Events:   publisher,
		Notifier: notifier,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins, AllowCredentials: true}))
	} else {
		e.Use(echomw.CORS())
	}

	httpserver.Register(e, &httpserver.Deps{
		DB: db,
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			Carts:         sessions,
			JWTSecret:     cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
		}},
		Profile:         &httpserver.ProfileHTTP{Svc: &service.ProfileService{Repo: r, Media: media}},
		Catalog:         &httpserver.CatalogHTTP{Svc: catalog},
		Cart:            &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Sessions: sessions}, Checkout: checkout},
		Orders:          &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher, Notifier: notifier}},
		Notifications:   &httpserver.NotificationHTTP{Svc: notifier, Hub: hub},
		Dashboard:       &httpserver.DashboardHTTP{Svc: &service.DashboardService{Repo: r}},
		JWTSecret:       cfg.JWTAccessSecret,
		LoginRatePerMin: cfg.LoginRatePerMin,
		MediaDir:        cfg.StorageDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
