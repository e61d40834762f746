package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"

	"github.com/jensholdgaard/player-auction/internal/announce"
	"github.com/jensholdgaard/player-auction/internal/api"
	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/health"
	"github.com/jensholdgaard/player-auction/internal/importer"
	"github.com/jensholdgaard/player-auction/internal/leader"
	"github.com/jensholdgaard/player-auction/internal/store"
	"github.com/jensholdgaard/player-auction/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/jensholdgaard/player-auction/internal/store/memory"
	_ "github.com/jensholdgaard/player-auction/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := pflag.StringP("config", "c", "", "path to configuration file (built-in defaults when empty)")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = version
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry, os.Stderr)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
		tp.Logger = slog.Default()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	repos, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Closer.Close()

	logger.InfoContext(ctx, "roster store opened", slog.String("driver", cfg.Database.Driver))

	sinks := event.Fanout{event.LogSink{Logger: logger}}
	if cfg.Discord.Enabled {
		discord, discordErr := announce.NewDiscord(cfg.Discord, repos.Teams, logger, tp.TracerProvider)
		if discordErr != nil {
			return fmt.Errorf("creating discord announcer: %w", discordErr)
		}
		defer discord.Close()
		sinks = append(sinks, discord)
	}

	auctionMgr, err := auction.NewManager(repos.Players, repos.Teams, sinks, cfg.Auction,
		logger, tp.TracerProvider, tp.MeterProvider, clk)
	if err != nil {
		return fmt.Errorf("creating auction manager: %w", err)
	}
	defer auctionMgr.Close()

	mapper := importer.Mapper{
		DefaultBasePrice: cfg.Import.DefaultBasePrice,
		Photo:            cfg.Import.PlaceholderPhoto,
	}
	importMgr, err := importer.NewManager(mapper, &importer.Preview{}, sinks,
		logger, tp.TracerProvider, tp.MeterProvider, clk)
	if err != nil {
		return fmt.Errorf("creating import manager: %w", err)
	}

	healthHandler := health.NewHandler(clk,
		health.Checker{Name: "store", Check: repos.Ping},
		health.Checker{Name: "auction", Check: auctionMgr.Ready},
	)

	router := mux.NewRouter()
	healthHandler.Register(router)
	api.NewHandler(repos, auctionMgr, importMgr, cfg.Server, logger, tp.TracerProvider, clk).Register(router)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "http server error", slog.Any("error", listenErr))
			cancel()
		}
	}()

	// runAuction is the work only the leader does.
	runAuction := func(ctx context.Context) {
		if startErr := auctionMgr.Start(ctx); startErr != nil {
			logger.ErrorContext(ctx, "starting auction failed", slog.Any("error", startErr))
			cancel()
			return
		}

		healthHandler.SetReady(true)
		logger.InfoContext(ctx, "auctiond is running", slog.String("version", version))

		<-ctx.Done()
		healthHandler.SetReady(false)
	}

	if cfg.LeaderElection.Enabled {
		logger.InfoContext(ctx, "leader election enabled, waiting for leadership...")

		leaderErr := leader.Run(ctx, cfg.LeaderElection, logger, leader.Callbacks{
			OnStartedLeading: runAuction,
			OnStoppedLeading: func() {
				logger.Info("lost leadership, shutting down...")
				cancel()
			},
		})
		if leaderErr != nil {
			return fmt.Errorf("leader election: %w", leaderErr)
		}
	} else {
		runAuction(ctx)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
