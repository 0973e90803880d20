package storage

import (
	"context"

	"github.com/bingoparty/bingoparty-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	GetRoomByJoinCode(ctx context.Context, joinCode string) (*model.Room, error)
	JoinCodeExists(ctx context.Context, joinCode string) (bool, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerBySessionToken(ctx context.Context, token string) (*model.Player, error)
	ListPlayersInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Player, error)

	// Card operations
	SaveCard(ctx context.Context, card *model.Card) error
	GetCard(ctx context.Context, id model.CardID) (*model.Card, error)
	GetCardForPlayer(ctx context.Context, playerID model.PlayerID) (*model.Card, error)
	ListCardsInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Card, error)

	// Chat operations
	AppendChatMessage(ctx context.Context, msg *model.ChatMessage) error
	ListChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error)
}
