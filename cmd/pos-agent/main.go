package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/packfinderz-pos/api/handlers"
	"github.com/angelmondragon/packfinderz-pos/api/routes"
	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/internal/checkout"
	"github.com/angelmondragon/packfinderz-pos/internal/queue"
	"github.com/angelmondragon/packfinderz-pos/internal/register"
	possync "github.com/angelmondragon/packfinderz-pos/internal/sync"
	"github.com/angelmondragon/packfinderz-pos/pkg/config"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/angelmondragon/packfinderz-pos/pkg/metrics"
	"github.com/angelmondragon/packfinderz-pos/pkg/posapi"
	"github.com/angelmondragon/packfinderz-pos/pkg/pubsub"
	"github.com/angelmondragon/packfinderz-pos/pkg/redis"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-agent"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-agent",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope, info, err := registerIdentity(cfg.Register)
	if err != nil {
		logg.Error(ctx, "invalid register identity", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}

	backend, err := posapi.NewClient(cfg.Backend)
	if err != nil {
		logg.Error(ctx, "failed to build backend client", err)
		os.Exit(1)
	}

	stream, err := possync.NewPubSubStream(pubsubClient.CartEventsSubscription(), logg)
	if err != nil {
		logg.Error(ctx, "failed to build change stream", err)
		os.Exit(1)
	}

	queueSvc, err := queue.NewService(redisClient)
	if err != nil {
		logg.Error(ctx, "failed to build queue service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	session, err := register.NewSession(scope, register.Params{
		Repo:    backend,
		Stream:  stream,
		Gateway: backend,
		Queue:   queueSvc,
		Logger:  logg,
		Info:    info,
		CheckoutConfig: checkout.Config{
			SettlementTimeout: cfg.Checkout.SettlementTimeout,
			InvoiceDueIn:      cfg.Checkout.InvoiceDueIn(),
		},
		SyncMetrics:     metrics.NewSyncMetrics(registry),
		CheckoutMetrics: metrics.NewCheckoutMetrics(registry),
		Closers:         []io.Closer{pubsubClient, redisClient},
	})
	if err != nil {
		logg.Error(ctx, "failed to build register session", err)
		os.Exit(1)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logg.Error(context.Background(), "error closing register session", err)
		}
	}()

	if _, err := session.Open(ctx); err != nil {
		logg.Error(ctx, "failed to open register session", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting pos agent")

	deps := map[string]handlers.Pinger{
		"redis":  redisClient,
		"pubsub": pubsubClient,
	}
	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, deps),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(runCtx, "pos agent stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "pos agent shut down gracefully")
}

func registerIdentity(cfg config.RegisterConfig) (cart.Scope, checkout.SessionInfo, error) {
	storeID, err := uuid.Parse(cfg.StoreID)
	if err != nil {
		return cart.Scope{}, checkout.SessionInfo{}, err
	}
	locationID, err := uuid.Parse(cfg.LocationID)
	if err != nil {
		return cart.Scope{}, checkout.SessionInfo{}, err
	}

	info := checkout.SessionInfo{StoreID: storeID, LocationID: locationID}
	if cfg.RegisterID != "" {
		registerID, err := uuid.Parse(cfg.RegisterID)
		if err != nil {
			return cart.Scope{}, checkout.SessionInfo{}, err
		}
		info.RegisterID = &registerID
	}
	if cfg.UserID != "" {
		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			return cart.Scope{}, checkout.SessionInfo{}, err
		}
		info.UserID = &userID
	}

	return cart.Scope{StoreID: storeID, LocationID: locationID}, info, nil
}
