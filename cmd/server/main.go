package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mpetrov/storefront/internal/config"
	"github.com/mpetrov/storefront/internal/events"
	"github.com/mpetrov/storefront/internal/httpserver"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/notify"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/search"
	"github.com/mpetrov/storefront/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	var producer events.Publisher
	var kafkaProducer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer = events.NewProducer(cfg.KafkaBrokers)
		producer = kafkaProducer
	}

	var indexer service.ProductIndexer
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		indexer = esClient
	}

	catalogRepo := &repo.CatalogRepo{DB: db}
	orderRepo := &repo.OrderRepo{DB: db}
	reviewRepo := &repo.ReviewRepo{DB: db}
	adminRepo := &repo.AdminRepo{DB: db}
	outboxRepo := &repo.OutboxRepo{DB: db}

	jwtSecret := []byte(cfg.JWTSecret)

	deps := httpserver.Deps{
		OrderHandler:     &httpserver.OrderHTTP{Svc: service.NewOrderService(orderRepo, catalogRepo, producer)},
		AnalyticsHandler: &httpserver.AnalyticsHTTP{Svc: service.NewAnalyticsService(orderRepo, catalogRepo)},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:           catalogRepo,
			Indexer:        indexer,
			Producer:       producer,
			CategoryImages: cfg.CategoryImages,
		}},
		AuthHandler:   &httpserver.AuthHTTP{Svc: service.NewAuthService(adminRepo, jwtSecret)},
		ReviewHandler: &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: reviewRepo}},
		JWTSecret:     jwtSecret,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
			return next(c)
		}
	})
	httpserver.Register(e, &deps)

	workerCtx, stopWorker := context.WithCancel(ctx)
	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	worker := notify.NewWorker(outboxRepo, mailer)
	go worker.Run(workerCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
