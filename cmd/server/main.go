package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/campuspulse/events-server/internal/api"
	"github.com/campuspulse/events-server/internal/auth"
	"github.com/campuspulse/events-server/internal/config"
	"github.com/campuspulse/events-server/internal/repository"
	"github.com/campuspulse/events-server/internal/service"
	"github.com/campuspulse/events-server/internal/utils"
)

func main() {
	// Load .env if present so os.Getenv picks values from it; best-effort
	_ = godotenv.Load()

	logger, err := utils.NewLogger(utils.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration
	cfg := config.LoadConfig()
	utils.SetSnowflakeNode(cfg.Server.SnowflakeNode)

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		sugar.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	verifier := auth.NewTokenInfoVerifier(cfg.Auth.GoogleClientID)
	svc := service.NewDefaultService(repo, tokens, auth.BcryptHasher{}, verifier, cfg.Policy)

	// Create API handler
	handler := api.NewHandler(svc, tokens, cfg.Policy, logger)

	// Set up Gin router
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())

	// Set up routes
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Run server in background and wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnf("Server shutdown: %v", err)
	}
}
