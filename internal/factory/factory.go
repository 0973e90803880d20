package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/bingoparty/bingoparty-go/internal/dependencies/clock"
	"github.com/bingoparty/bingoparty-go/internal/dependencies/random"
	"github.com/bingoparty/bingoparty-go/internal/services/card"
	"github.com/bingoparty/bingoparty-go/internal/services/chat"
	"github.com/bingoparty/bingoparty-go/internal/services/generator"
	"github.com/bingoparty/bingoparty-go/internal/services/player"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
	"github.com/bingoparty/bingoparty-go/internal/storage"
	"github.com/bingoparty/bingoparty-go/internal/storage/memory"
	redisstorage "github.com/bingoparty/bingoparty-go/internal/storage/redis"
	"github.com/bingoparty/bingoparty-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Rooms      *room.Registry
	Players    *player.Registry
	Cards      *card.Engine
	Chat       *chat.Log
	Generator  *generator.Service
	HubManager *ws.HubManager
	Gateway    *ws.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// GeneratorConfig configures the AI option generator (optional)
	// If nil, rooms created with the ai_gen mode fail with
	// ErrGeneratorUnavailable
	GeneratorConfig *generator.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var gen *generator.Service
	if cfg.GeneratorConfig != nil {
		gen = generator.New(*cfg.GeneratorConfig, logger)
	}

	return newWithDependencies(store, clk, rnd, gen, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, gen *generator.Service, logger *slog.Logger) *App {
	// room.Registry takes the generator through an interface; a typed
	// nil pointer must not sneak in as a non-nil interface value
	var optionGen room.OptionGenerator
	if gen != nil {
		optionGen = gen
	}

	rooms := room.NewRegistry(store, optionGen, clk, rnd)
	players := player.NewRegistry(store, clk)
	cards := card.NewEngine(store, rooms, clk, rnd)
	chatLog := chat.NewLog(store, clk)
	hubManager := ws.NewHubManager(logger)
	gateway := ws.NewGateway(rooms, players, cards, chatLog, hubManager, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Rooms:      rooms,
		Players:    players,
		Cards:      cards,
		Chat:       chatLog,
		Generator:  gen,
		HubManager: hubManager,
		Gateway:    gateway,
	}
}
