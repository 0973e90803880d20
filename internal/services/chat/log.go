package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bingoparty/bingoparty-go/internal/dependencies/clock"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

// DefaultHistoryLimit caps how many messages History returns
const DefaultHistoryLimit = 100

// Log is the append-only per-room chat history
type Log struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewLog creates a new chat Log
func NewLog(storage storage.Storage, clock clock.Clock) *Log {
	return &Log{
		storage: storage,
		clock:   clock,
	}
}

// Append stores a message. Text is trimmed and capped at 500 characters;
// messages empty after trimming are rejected.
func (l *Log) Append(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, playerName, text string) (*model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", model.ErrValidation)
	}
	if runes := []rune(text); len(runes) > model.ChatMessageMaxLength {
		text = string(runes[:model.ChatMessageMaxLength])
	}

	msg := &model.ChatMessage{
		ID:         model.MessageID(uuid.NewString()),
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerName: playerName,
		Message:    text,
		CreatedAt:  l.clock.Now(),
	}

	if err := l.storage.AppendChatMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns up to limit messages in ascending creation order.
// limit <= 0 uses DefaultHistoryLimit.
func (l *Log) History(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return l.storage.ListChatMessages(ctx, roomID, limit)
}
