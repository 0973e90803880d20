package model

import "time"

// MessageID uniquely identifies a chat message
type MessageID string

// ChatMessageMaxLength is the cap applied to message text after trimming
const ChatMessageMaxLength = 500

// ChatMessage is an append-only per-room chat entry. PlayerName is
// denormalized at write time so history survives player churn.
type ChatMessage struct {
	ID         MessageID
	RoomID     RoomID
	PlayerID   PlayerID
	PlayerName string
	Message    string
	CreatedAt  time.Time
}
