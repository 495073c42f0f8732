package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/usulmund/url-shorter/internal/config"
	"github.com/usulmund/url-shorter/internal/handler"
	"github.com/usulmund/url-shorter/internal/repository"
	"github.com/usulmund/url-shorter/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Режим сброса БД
	if len(os.Args) > 1 && os.Args[len(os.Args)-1] == "--reset_db" {
		if err := db.ResetSchema(ctx); err != nil {
			logger.Fatal("Failed to reset database", zap.Error(err))
		}
		logger.Info("Database reset complete")
		return
	}

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Инициализация репозиториев
	linkRepo := repository.NewLinkRepository(db)
	visRepo := repository.NewVisibilityRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	statusRepo := repository.NewStatusRepository(db)

	// Инициализация сервисов
	shortener := service.NewShortenerService(linkRepo, visRepo, logger)
	resolver := service.NewResolverService(linkRepo, visRepo, logger)
	auth := service.NewAuthService(accountRepo, cfg.Auth.HashPasswords, logger)
	status := service.NewStatusService(statusRepo, linkRepo, visitRepo, logger)

	// Инициализация процессора переходов (Worker Pool)
	visitProcessor := service.NewVisitProcessor(visitRepo, linkRepo, visRepo, logger)
	visitProcessor.Start()
	defer visitProcessor.Stop()

	// Настройка роутера
	router := handler.NewRouter(shortener, resolver, auth, status, visitProcessor, cfg.App, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
