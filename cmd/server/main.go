package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	handler "github.com/spine/api/internal/adapters/handler/http"
	"github.com/spine/api/internal/adapters/hash"
	"github.com/spine/api/internal/adapters/metadata/googlebooks"
	repo "github.com/spine/api/internal/adapters/repository/postgres"
	"github.com/spine/api/internal/adapters/token"
	"github.com/spine/api/internal/config"
	"github.com/spine/api/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBConnString())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repo.NewUserRepository(db)
	tokenRepo := repo.NewRefreshTokenRepository(db)
	bookRepo := repo.NewBookRepository(db)
	userBookRepo := repo.NewUserBookRepository(db)
	listRepo := repo.NewListRepository(db)

	codec := token.NewJWTCodec([]byte(cfg.JWTSecret))
	hasher := hash.NewBcryptHasher()
	metadata := googlebooks.NewClient(cfg.GoogleBooksBaseURL)

	authSvc := services.NewAuthService(userRepo, tokenRepo, codec, hasher).
		WithTTLs(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userSvc := services.NewUserService(userRepo)
	bookSvc := services.NewBookService(bookRepo, userBookRepo)
	listSvc := services.NewListService(listRepo, bookRepo)
	searchSvc := services.NewSearchService(metadata)

	router := handler.NewHandler(handler.Handlers{
		Auth:   handler.NewAuthHandler(authSvc),
		User:   handler.NewUserHandler(userSvc),
		Book:   handler.NewBookHandler(bookSvc),
		List:   handler.NewListHandler(listSvc),
		Search: handler.NewSearchHandler(searchSvc),
	}, authSvc)

	server := &stdhttp.Server{Addr: cfg.Addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
