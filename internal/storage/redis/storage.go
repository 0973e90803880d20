package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Pipeline the value write and the join-code index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.Set(ctx, joinCodeIndexKey(room.JoinCode), string(room.ID), s.cfg.RoomTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) GetRoomByJoinCode(ctx context.Context, joinCode string) (*model.Room, error) {
	roomIDStr, err := s.client.Get(ctx, joinCodeIndexKey(joinCode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	return s.GetRoom(ctx, model.RoomID(roomIDStr))
}

func (s *Storage) JoinCodeExists(ctx context.Context, joinCode string) (bool, error) {
	exists, err := s.client.Exists(ctx, joinCodeIndexKey(joinCode)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil
		}
		return err
	}

	playerKeys, err := s.client.SMembers(ctx, playersInRoomIndexKey(id)).Result()
	if err != nil {
		return err
	}
	cardKeys, err := s.client.SMembers(ctx, cardsInRoomIndexKey(id)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.Del(ctx, joinCodeIndexKey(room.JoinCode))
	for _, key := range playerKeys {
		pipe.Del(ctx, key)
	}
	for _, key := range cardKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, playersInRoomIndexKey(id))
	pipe.Del(ctx, cardsInRoomIndexKey(id))
	pipe.Del(ctx, chatKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pKey := playerKey(player.ID)
	indexKey := playersInRoomIndexKey(player.RoomID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, pKey, data, s.cfg.PlayerTTL)
	pipe.Set(ctx, sessionTokenIndexKey(player.SessionToken), string(player.ID), s.cfg.PlayerTTL)
	pipe.SAdd(ctx, indexKey, pKey)
	pipe.Expire(ctx, indexKey, s.cfg.PlayerTTL) // Keep index TTL in sync
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerBySessionToken(ctx context.Context, token string) (*model.Player, error) {
	playerIDStr, err := s.client.Get(ctx, sessionTokenIndexKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(playerIDStr))
}

func (s *Storage) ListPlayersInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	playerKeys, err := s.client.SMembers(ctx, playersInRoomIndexKey(roomID)).Result()
	if err != nil {
		return nil, err
	}

	if len(playerKeys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

// Card operations

func (s *Storage) SaveCard(ctx context.Context, card *model.Card) error {
	data, err := json.Marshal(card)
	if err != nil {
		return err
	}

	cKey := cardKey(card.ID)
	indexKey := cardsInRoomIndexKey(card.RoomID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, cKey, data, s.cfg.CardTTL)
	pipe.Set(ctx, playerCardIndexKey(card.PlayerID), string(card.ID), s.cfg.CardTTL)
	pipe.SAdd(ctx, indexKey, cKey)
	pipe.Expire(ctx, indexKey, s.cfg.CardTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	data, err := s.client.Get(ctx, cardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCardNotFound
		}
		return nil, err
	}

	var card model.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Storage) GetCardForPlayer(ctx context.Context, playerID model.PlayerID) (*model.Card, error) {
	cardIDStr, err := s.client.Get(ctx, playerCardIndexKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCardNotFound
		}
		return nil, err
	}

	return s.GetCard(ctx, model.CardID(cardIDStr))
}

func (s *Storage) ListCardsInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Card, error) {
	cardKeys, err := s.client.SMembers(ctx, cardsInRoomIndexKey(roomID)).Result()
	if err != nil {
		return nil, err
	}

	if len(cardKeys) == 0 {
		return []*model.Card{}, nil
	}

	values, err := s.client.MGet(ctx, cardKeys...).Result()
	if err != nil {
		return nil, err
	}

	cards := make([]*model.Card, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Card may have expired
		}
		var card model.Card
		if err := json.Unmarshal([]byte(val.(string)), &card); err != nil {
			continue // Skip invalid data
		}
		cards = append(cards, &card)
	}

	sort.Slice(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
	return cards, nil
}

// Chat operations

func (s *Storage) AppendChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(msg.RoomID)

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.ChatTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	// Negative start keeps the most recent limit messages, still in ascending order
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	values, err := s.client.LRange(ctx, chatKey(roomID), start, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]*model.ChatMessage, 0, len(values))
	for _, val := range values {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}
