package redis

import (
	"fmt"
	"strings"

	"github.com/bingoparty/bingoparty-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "bingo"

// Key generation functions for each entity type

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// joinCodeIndexKey returns the Redis key for the join_code -> room_id index.
// Codes are stored uppercased so lookups are case-insensitive.
func joinCodeIndexKey(joinCode string) string {
	return fmt.Sprintf("%s:idx:join_code:%s", keyPrefix, strings.ToUpper(joinCode))
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// sessionTokenIndexKey returns the Redis key for the token -> player_id index
func sessionTokenIndexKey(token string) string {
	return fmt.Sprintf("%s:idx:session:%s", keyPrefix, token)
}

// playersInRoomIndexKey returns the Redis key for the SET of players in a room
func playersInRoomIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:players_in_room:%s", keyPrefix, roomID)
}

// cardKey returns the Redis key for a Card
func cardKey(id model.CardID) string {
	return fmt.Sprintf("%s:card:%s", keyPrefix, id)
}

// playerCardIndexKey returns the Redis key for the player_id -> card_id index
func playerCardIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:card_for_player:%s", keyPrefix, playerID)
}

// cardsInRoomIndexKey returns the Redis key for the SET of cards in a room
func cardsInRoomIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:cards_in_room:%s", keyPrefix, roomID)
}

// chatKey returns the Redis key for a room's chat LIST
func chatKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:chat:%s", keyPrefix, roomID)
}
