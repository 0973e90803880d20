package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types. Rooms carry everything
	// else with them, so the dependent TTLs should not be shorter than
	// the room TTL.
	RoomTTL   time.Duration
	PlayerTTL time.Duration
	CardTTL   time.Duration
	ChatTTL   time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      72 * time.Hour,
		PlayerTTL:    72 * time.Hour,
		CardTTL:      72 * time.Hour,
		ChatTTL:      72 * time.Hour,
	}
}
