package model

import "time"

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus represents the lifecycle phase of a room
type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "LOBBY"    // Options being collected, no cards yet
	RoomStatusPlaying  RoomStatus = "PLAYING"  // Cards created, game in progress
	RoomStatusFinished RoomStatus = "FINISHED" // Game over
)

// PoolMinimum is the number of options required before cards can be created.
// A 5x5 card has 24 non-free spaces.
const PoolMinimum = 24

// Room represents a shared game session joined via a short code
type Room struct {
	ID           RoomID
	JoinCode     string
	Title        string
	CreatorID    *PlayerID // nil until the first player joins
	Status       RoomStatus
	IsOpen       bool
	OptionsPool  []string
	CreatedAt    time.Time
	LastActivity time.Time
}

// CanCreateCards reports whether the room is ready for card creation
func (r *Room) CanCreateCards() bool {
	return r.Status == RoomStatusLobby && len(r.OptionsPool) >= PoolMinimum
}
