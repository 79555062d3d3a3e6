package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/postly/backend/internal/config"
	delivery "github.com/postly/backend/internal/delivery/http"
	"github.com/postly/backend/internal/metrics"
	"github.com/postly/backend/internal/middleware"
	"github.com/postly/backend/internal/repository/postgres"
	"github.com/postly/backend/internal/usecase"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	metrics.Init()

	// Connect to PostgreSQL with retry
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				log.Println("Connected to PostgreSQL")
				break
			} else {
				pool.Close()
				log.Printf("Attempt %d: failed to ping database: %v", attempt, pingErr)
			}
		} else {
			log.Printf("Attempt %d: failed to connect to database: %v", attempt, err)
		}
		cancel()
		if attempt == 5 {
			log.Fatalf("Could not connect to database after 5 attempts")
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	revocationRepo := postgres.NewRevocationRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	// Usecases
	tokenService := usecase.NewTokenService(userRepo, revocationRepo, &cfg.JWT)
	authUsecase := usecase.NewAuthUsecase(userRepo, revocationRepo, tokenService, &cfg.Password)
	postUsecase := usecase.NewPostUsecase(postRepo)
	productUsecase := usecase.NewProductUsecase(productRepo)

	// HTTP
	handler := delivery.NewHandler(authUsecase, tokenService, postUsecase, productUsecase)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	router := delivery.NewRouter(handler, authMiddleware, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Periodically drop revocation records for tokens past their natural
	// lifetime; they can no longer be presented anyway.
	gcDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := revocationRepo.DeleteExpired(); err != nil {
					log.Printf("revocation gc: %v", err)
				}
			case <-gcDone:
				return
			}
		}
	}()

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	close(gcDone)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
