package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-contact-review-backend/config"
	v1 "go-contact-review-backend/internal/delivery/http/v1"
	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/internal/gateway"
	"go-contact-review-backend/internal/repository/memory"
	"go-contact-review-backend/internal/repository/redisstore"
	"go-contact-review-backend/internal/usecase"
	"go-contact-review-backend/pkg/logger"
	"go-contact-review-backend/pkg/redis"
	"go-contact-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting contact review backend", "port", cfg.Port)

	// 3. Setup Session Store
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	store, storeBackend := newSessionStore(cfg, sessionTTL)
	defer store.Close()
	defer redis.Close()

	// 4. Setup Enrollment Gateways
	gatewayTimeout := time.Duration(cfg.GatewayTimeoutSecs) * time.Second
	mailchimp := gateway.NewMailchimpGateway(cfg.MailchimpAPIKey, cfg.MailchimpListID, cfg.MailchimpServerPrefix, gatewayTimeout)
	pipedrive := gateway.NewPipedriveGateway(cfg.PipedriveAPIKey, cfg.PipedriveDomain, gatewayTimeout)

	// 5. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)
	ingestUC := usecase.NewIngestUsecase(store, validate)
	reviewUC := usecase.NewReviewUsecase(store, mailchimp, pipedrive)
	var storePing func(context.Context) error
	if storeBackend == "redis" {
		storePing = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(store, storeBackend, storePing)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		IngestUC: ingestUC,
		ReviewUC: reviewUC,
		HealthUC: healthUC,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// newSessionStore prefers Redis when configured and reachable, falling back
// to the in-process store bounded by the configured TTL and capacity.
func newSessionStore(cfg *config.Config, ttl time.Duration) (domain.SessionRepository, string) {
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory session store", "error", err)
		} else {
			logger.Log.Info("Using Redis session store", "ttl", ttl)
			return redisstore.NewSessionRepository(redis.Client(), ttl), "redis"
		}
	}
	return memory.NewSessionRepository(memory.Config{
		TTL:         ttl,
		MaxSessions: cfg.SessionMaxCount,
	}), "memory"
}
