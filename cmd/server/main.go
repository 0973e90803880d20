package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"

	"github.com/bingoparty/bingoparty-go/internal/api"
	"github.com/bingoparty/bingoparty-go/internal/factory"
	"github.com/bingoparty/bingoparty-go/internal/services/generator"
	redisstorage "github.com/bingoparty/bingoparty-go/internal/storage/redis"
)

// envConfig is populated from the environment
type envConfig struct {
	Host        string `env:"HOST" envDefault:""`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	GeneratorEnabled bool   `env:"GENERATOR_ENABLED" envDefault:"false"`
	GeneratorAPIURL  string `env:"GENERATOR_API_URL"`
	GeneratorModel   string `env:"GENERATOR_MODEL"`
	GeneratorAPIKey  string `env:"GENERATOR_API_KEY"`
}

func main() {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		slog.Error("failed to parse environment", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(envCfg.LogLevel),
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: envCfg.StorageType,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if envCfg.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = envCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	// Configure the AI option generator if enabled
	if envCfg.GeneratorEnabled {
		genCfg := generator.DefaultConfig()
		if envCfg.GeneratorAPIURL != "" {
			genCfg.APIURL = envCfg.GeneratorAPIURL
		}
		if envCfg.GeneratorModel != "" {
			genCfg.Model = envCfg.GeneratorModel
		}
		genCfg.APIKey = envCfg.GeneratorAPIKey
		cfg.GeneratorConfig = &genCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.Rooms,
		Players:    app.Players,
		Cards:      app.Cards,
		Chat:       app.Chat,
		HubManager: app.HubManager,
		Gateway:    app.Gateway,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = envCfg.Host
	serverConfig.Port = envCfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
