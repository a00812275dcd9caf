package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MediaDownloader/internal/browser"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/downloads"
	"github.com/Belphemur/MediaDownloader/internal/executor"
	grpcserver "github.com/Belphemur/MediaDownloader/internal/grpc"
	"github.com/Belphemur/MediaDownloader/internal/ipc"
	"github.com/Belphemur/MediaDownloader/internal/metrics"
	"github.com/Belphemur/MediaDownloader/internal/sources"
	"github.com/Belphemur/MediaDownloader/internal/store"
	"github.com/Belphemur/MediaDownloader/internal/window"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("bin_dir", cfg.BinDir).
		Str("download_dir", cfg.DownloadDir).
		Str("store_provider", cfg.Store.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	cacheTTL, err := time.ParseDuration(cfg.Store.Cache.TTL)
	if err != nil {
		logger.Warn().Err(err).Str("ttl", cfg.Store.Cache.TTL).Msg("Invalid store cache TTL, using 10m")
		cacheTTL = 10 * time.Minute
	}
	kv, err := store.New(cfg.Store.Provider, store.ProviderConfig{
		Path:          cfg.Store.Path,
		RedisAddress:  cfg.Store.Redis.Address,
		RedisPassword: cfg.Store.Redis.Password,
		RedisDB:       cfg.Store.Redis.DB,
		CacheSize:     cfg.Store.Cache.Size,
		CacheTTL:      cacheTTL,
		Group:         "store",
		Logger:        store.LoggerFrom(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Store.Provider).Msg("Failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	settings := store.NewSettings(kv, store.Defaults{
		Workspace: cfg.DownloadDir,
		ExeFile:   string(executor.MediaGo),
		PromptTip: true,
	}, logger)

	events := ipc.NewEventBus(ipc.DefaultEventBuffer)
	windows := window.NewManager(events)
	windows.SetOpener(window.OpenExternal)

	exec := executor.NewExecutor(cfg.BinDir)
	downloadService := downloads.NewService(sources.NewRepository(kv), settings, exec, events)

	inspector := browser.NewInspectorFromConfig(cfg)
	ctx := context.Background()
	if settings.UseProxy(ctx) {
		if err := inspector.SetProxy(settings.Proxy(ctx)); err != nil {
			logger.Warn().Err(err).Msg("Stored proxy is invalid, browsing without proxy")
		}
	}

	// Quit may be requested by a client or by a signal
	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }

	bridge := ipc.NewBridge(events)
	ipc.Register(bridge, ipc.Services{
		Settings:  settings,
		Downloads: downloadService,
		Executor:  exec,
		Windows:   windows,
		Inspector: inspector,
		Quit:      requestQuit,
	})
	logger.Debug().Strs("channels", bridge.Channels()).Msg("Registered IPC channels")

	grpcServer := grpcserver.NewGRPCServer(bridge)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
	}

	logger.Info().Str("address", address).Msg("Starting gRPC bridge")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		case <-quit:
			logger.Info().Msg("Main window closed, shutting down")
		}
		// Closing the bus ends the Subscribe streams so GracefulStop does not wait on them
		events.Close()
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal().Err(err).Msg("Failed to serve gRPC")
	}

	bridge.Wait()

	grace, err := time.ParseDuration(cfg.ShutdownGrace)
	if err != nil {
		logger.Warn().Err(err).Str("shutdown_grace", cfg.ShutdownGrace).Msg("Invalid shutdown grace, using 30s")
		grace = 30 * time.Second
	}
	if active := downloadService.Active(); active > 0 {
		logger.Info().Int("active", active).Dur("grace", grace).Msg("Waiting for running downloads to finish")
	}
	if !downloadService.WaitTimeout(grace) {
		logger.Warn().Int("active", downloadService.Active()).
			Msg("Exiting with downloads still running, their sources stay downloading until reset")
		return
	}

	logger.Info().Msg("Bridge stopped gracefully")
}
