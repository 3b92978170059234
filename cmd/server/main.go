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
	"golang.org/x/time/rate"

	"storefront/internal/apierror"
	"storefront/internal/config"
	"storefront/internal/handlers"
	authhandlers "storefront/internal/handlers/auth"
	"storefront/internal/logging"
	"storefront/internal/mailer"
	authmw "storefront/internal/middleware/auth"
	"storefront/internal/mykafka"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
	httpserver "storefront/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("database migration error: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)

	codec := tokens.NewCodec(cfg.JWTSecret)
	sessions := &session.Manager{
		Codec:      codec,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Secure:     cfg.IsProduction(),
	}

	userRepo := &repo.UserRepo{DB: db}
	tokenRepo := &repo.TokenRepo{DB: db}
	productRepo := &repo.ProductRepo{DB: db}
	reviewRepo := &repo.ReviewRepo{DB: db}
	orderRepo := &repo.OrderRepo{DB: db}

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Origin:   cfg.Origin,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apierror.HTTPErrorHandler
	e.Validator = httpserver.NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORS(),
		middleware.BodyLimit("2M"),
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))),
		logging.RequestLogger(logger),
	)

	deps := &httpserver.Deps{
		Auth: &authmw.Middleware{Codec: codec, Sessions: sessions, Tokens: tokenRepo},
		AuthH: &authhandlers.Handler{
			Users:    userRepo,
			Tokens:   tokenRepo,
			Sessions: sessions,
			Mailer:   smtpMailer,
			Producer: producer,
		},
		UserH:    &handlers.UserHandler{Users: userRepo, Tokens: tokenRepo, Sessions: sessions},
		ProductH: &handlers.ProductHandler{Products: productRepo, Producer: producer, UploadDir: "public/uploads"},
		ReviewH:  &handlers.ReviewHandler{Reviews: reviewRepo, Products: productRepo, Producer: producer},
		OrderH:   &handlers.OrderHandler{Orders: orderRepo, Products: productRepo, Producer: producer},
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
