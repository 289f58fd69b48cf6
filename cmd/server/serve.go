package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"taskroom.app/server/common/id"
	"taskroom.app/server/common/logger"
	"taskroom.app/server/common/otel"
	"taskroom.app/server/core/config"
	"taskroom.app/server/core/db"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/middleware"
	httprouter "taskroom.app/server/internal/http/router"
	"taskroom.app/server/internal/realtime"
	"taskroom.app/server/internal/room"
	"taskroom.app/server/internal/service"
	"taskroom.app/server/internal/store"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the REST and real-time server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply pending migrations before serving",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides PORT)",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	printBanner()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.String("port")
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "taskroom starting", "env", cfg.Env, "node", cfg.NodeID)
	if err := id.Init(cfg.NodeID); err != nil {
		return fmt.Errorf("initializing snowflake id generator: %w", err)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	if cmd.Bool("migrate") {
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}

	stores := store.NewStores(database.Queries())
	services := service.NewServices(stores, service.NewTxRunner(database))

	tracker := room.NewTracker()

	relay, closeRelay, err := connectRelay(ctx, cfg.Relay)
	if err != nil {
		return err
	}
	defer closeRelay()

	var opts []broadcast.Option
	if relay != nil {
		opts = append(opts, broadcast.WithRelay(relay))
	}
	gateway := broadcast.NewGateway(tracker, opts...)

	if relay != nil {
		relayCtx, stopRelay := context.WithCancel(ctx)
		defer stopRelay()
		go relay.Run(relayCtx, gateway.DeliverRemote)
	}

	return serve(ctx, cfg, telemetry, services, tracker, gateway)
}

// connectRelay returns a nil relay when cross-instance fan-out is not
// configured.
func connectRelay(ctx context.Context, cfg config.RelayConfig) (*broadcast.RedisRelay, func(), error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "redis relay disabled, fan-out is local to this instance")
		return nil, func() {}, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis relay connected", "channel", cfg.Channel)

	closeFn := func() {
		if err := redisClient.Close(); err != nil {
			slog.ErrorContext(ctx, "redis close error", "error", err)
		}
	}
	return broadcast.NewRedisRelay(redisClient, cfg.Channel), closeFn, nil
}

func serve(ctx context.Context, cfg config.Config, telemetry *otel.Telemetry, services *service.Services, tracker *room.Tracker, gateway *broadcast.Gateway) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	realtimeServer := realtime.NewServer(cfg.Realtime, services.Workspaces(), tracker, gateway)

	router := setupRouter(cfg, services, gateway, realtimeServer)
	// WriteTimeout stays zero: websocket connections are long-lived.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	realtimeServer.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
	return nil
}

func setupRouter(cfg config.Config, services *service.Services, gateway *broadcast.Gateway, rt httprouter.RealtimeServer) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, gateway, rt)

	return router
}
