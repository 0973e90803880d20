package model

import "time"

// PlayerID uniquely identifies a player
type PlayerID string

// Player represents a participant in a single room. Identity is a bearer
// session token issued once at join time; there are no accounts.
type Player struct {
	ID           PlayerID
	RoomID       RoomID
	Name         string
	SessionToken string
	AvatarURL    string
	LastSeen     time.Time
	CreatedAt    time.Time
}
