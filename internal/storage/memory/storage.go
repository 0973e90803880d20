package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms         map[model.RoomID]*model.Room
	joinCodeIndex map[string]model.RoomID
	players       map[model.PlayerID]*model.Player
	tokenIndex    map[string]model.PlayerID
	cards         map[model.CardID]*model.Card
	playerCards   map[model.PlayerID]model.CardID
	chat          map[model.RoomID][]*model.ChatMessage
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:         make(map[model.RoomID]*model.Room),
		joinCodeIndex: make(map[string]model.RoomID),
		players:       make(map[model.PlayerID]*model.Player),
		tokenIndex:    make(map[string]model.PlayerID),
		cards:         make(map[model.CardID]*model.Card),
		playerCards:   make(map[model.PlayerID]model.CardID),
		chat:          make(map[model.RoomID][]*model.ChatMessage),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	s.joinCodeIndex[strings.ToUpper(room.JoinCode)] = room.ID
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) GetRoomByJoinCode(ctx context.Context, joinCode string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinCodeIndex[strings.ToUpper(joinCode)]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) JoinCodeExists(ctx context.Context, joinCode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.joinCodeIndex[strings.ToUpper(joinCode)]
	return ok, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	delete(s.joinCodeIndex, strings.ToUpper(room.JoinCode))
	delete(s.rooms, id)

	// Cascade to dependents
	for pid, p := range s.players {
		if p.RoomID == id {
			delete(s.tokenIndex, p.SessionToken)
			delete(s.players, pid)
			if cid, ok := s.playerCards[pid]; ok {
				delete(s.cards, cid)
				delete(s.playerCards, pid)
			}
		}
	}
	delete(s.chat, id)
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	s.tokenIndex[player.SessionToken] = player.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetPlayerBySessionToken(ctx context.Context, token string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenIndex[token]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) ListPlayersInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.Player
	for _, p := range s.players {
		if p.RoomID == roomID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

// Card operations

func (s *Storage) SaveCard(ctx context.Context, card *model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
	s.playerCards[card.PlayerID] = card.ID
	return nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	return card, nil
}

func (s *Storage) GetCardForPlayer(ctx context.Context, playerID model.PlayerID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.playerCards[playerID]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	card, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	return card, nil
}

func (s *Storage) ListCardsInRoom(ctx context.Context, roomID model.RoomID) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cards []*model.Card
	for _, c := range s.cards {
		if c.RoomID == roomID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
	return cards, nil
}

// Chat operations

func (s *Storage) AppendChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat[msg.RoomID] = append(s.chat[msg.RoomID], msg)
	return nil
}

func (s *Storage) ListChatMessages(ctx context.Context, roomID model.RoomID, limit int) ([]*model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := s.chat[roomID]
	// Keep the most recent limit messages, still in ascending order
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	result := make([]*model.ChatMessage, len(messages))
	copy(result, messages)
	return result, nil
}
