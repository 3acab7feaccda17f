package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/scheduler"
	"github.com/sheikhrachel/go-gol-engine/server"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

const (
	defaultConfigFile = "config.json"
	configEnv         = "GOL_CONFIG"
	shutdownTimeout   = 5 * time.Second
)

func main() {
	configFile := os.Getenv(configEnv)
	if configFile == "" {
		configFile = defaultConfigFile
	}

	// Load configuration - fallback to defaults if file doesn't exist
	config, configErr := utils.LoadConfig(configFile)
	if configErr != nil && os.IsNotExist(errors.Cause(configErr)) {
		config = utils.DefaultConfig()
	}

	logger, err := utils.NewLogger(os.Stderr, config.LogLevel)
	if err != nil {
		logger, _ = utils.NewLogger(os.Stderr, "info")
		logger.Warn("falling back to info logging", "err", err)
	}
	if configErr != nil {
		if !os.IsNotExist(errors.Cause(configErr)) {
			logger.Fatal("invalid configuration", "err", configErr)
		}
		logger.Info("using default configuration", "file", configFile)
	}

	g, err := initializeGame(config, logger)
	if err != nil {
		logger.Fatal("failed to initialize game", "err", err)
	}
	defer g.scheduler.Close()

	g.scheduler.Subscribe(func(u scheduler.Update) {
		g.stats.Update(u.Generation, u.Grid.CountLivingCells(), time.Now())
	})
	if config.Render {
		displayGameInfo(os.Stdout, config, g.engine.CurrentGrid())
		g.scheduler.Subscribe(renderObserver(os.Stdout, g.stats, logger))
	}
	limitReached := make(chan struct{}, 1)
	g.scheduler.Subscribe(limitObserver(config.MaxGenerations, limitReached))

	serverErr := make(chan error, 1)
	var srv *http.Server
	if config.ListenAddr != "" {
		handler := server.NewHandler(g.scheduler, server.HandlerConfig{
			Logger:  logger.WithPrefix("server"),
			Catalog: g.catalog,
		})
		srv = &http.Server{
			Addr:              config.ListenAddr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("listening", "addr", config.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if config.AutoStart {
		g.scheduler.Start()
	}

	// Handle Ctrl+C gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutting down gracefully")
	case <-limitReached:
		logger.Info("reached maximum generations limit", "max_generations", config.MaxGenerations)
	case err := <-serverErr:
		logger.Error("server failed", "err", err)
	}

	g.scheduler.Stop()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("server shutdown incomplete", "err", err)
		}
	}

	final := g.stats.Snapshot()
	logger.Info("final stats",
		"generations", final.TotalGenerations,
		"runtime", final.Runtime.Round(time.Millisecond),
		"gen_per_sec", final.GenerationsPerSecond,
		"avg_population", final.AveragePopulation,
	)
}
