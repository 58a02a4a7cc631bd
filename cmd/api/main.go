package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nikobathrooms/niko-auth-gateway/internal/api/http"
	"github.com/nikobathrooms/niko-auth-gateway/internal/api/http/handlers"
	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/cms"
	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/internal/events"
	"github.com/nikobathrooms/niko-auth-gateway/internal/observability"
	"github.com/nikobathrooms/niko-auth-gateway/internal/persistence"
	"github.com/nikobathrooms/niko-auth-gateway/internal/redirect"
	"github.com/nikobathrooms/niko-auth-gateway/internal/service"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
	"github.com/nikobathrooms/niko-auth-gateway/internal/supabase"
	"github.com/nikobathrooms/niko-auth-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	provider := supabase.NewClient(cfg.Supabase, logger)
	cmsClient := cms.NewClient(cfg.Supabase, logger)

	dispatcher := events.NewInMemoryDispatcher()
	store := session.NewStore(provider, session.NewRedisCache(redis.Client), dispatcher, logger)
	policy := redirect.NewPolicy(cfg.Routes, cfg.Webflow)

	profileSync := service.NewProfileSyncService(dispatcher, cmsClient, logger)
	worker.StartProfileSyncWorker(profileSync)

	wishlist := service.NewWishlistService(cmsClient, logger)

	tokenParser := auth.NewTokenParser(cfg.Supabase.JWTSecret)
	authMiddleware := auth.NewMiddleware(tokenParser)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, provider),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(store, provider, policy, logger),
		Session:        handlers.NewSessionHandler(store, policy),
		Gating:         handlers.NewGatingHandler(store, cfg.Gating),
		Wishlist:       handlers.NewWishlistHandler(wishlist),
		Admin:          handlers.NewAdminHandler(cmsClient, cfg.App.AdminServiceKey, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	profileSync.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
