package response

import (
	"time"

	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/card"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
)

// Space is a single cell of a bingo card
type Space struct {
	Position    int    `json:"position"`
	OptionText  string `json:"optionText"`
	IsFreeSpace bool   `json:"isFreeSpace"`
	IsMarked    bool   `json:"isMarked"`
}

// Card is a player's bingo card with its spaces in position order
type Card struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	RoomID    string    `json:"roomId"`
	Spaces    []Space   `json:"spaces"`
	CreatedAt time.Time `json:"createdAt"`
}

// Player is a room member, with their card when one exists
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
	Card      *Card     `json:"card,omitempty"`
}

// Room is the room state without membership
type Room struct {
	ID           string    `json:"id"`
	JoinCode     string    `json:"joinCode"`
	Title        string    `json:"title"`
	CreatorID    *string   `json:"creatorId,omitempty"`
	Status       string    `json:"status"`
	IsOpen       bool      `json:"isOpen"`
	OptionsPool  []string  `json:"optionsPool"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// RoomState is a full room snapshot: the room plus every member
type RoomState struct {
	Room
	Players []Player `json:"players"`
}

// ChatMessage is a single chat entry
type ChatMessage struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GameState is the payload a client receives on joining a room
type GameState struct {
	RoomState
	ChatHistory []ChatMessage `json:"chatHistory"`
}

// RoomCreated is returned from room creation
type RoomCreated struct {
	RoomID   string `json:"roomId"`
	JoinCode string `json:"joinCode"`
	Title    string `json:"title"`
}

// JoinResult is returned from joining a room and carries the session
// token the client must present on the websocket
type JoinResult struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	SessionToken string `json:"sessionToken"`
	Card         *Card  `json:"card,omitempty"`
}

// RoomSummary is the lookup response for a join code
type RoomSummary struct {
	ID       string `json:"id"`
	JoinCode string `json:"joinCode"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	IsOpen   bool   `json:"isOpen"`
}

// PlayerCard pairs a card with its owner for room-wide card listings
type PlayerCard struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Card       Card   `json:"card"`
}

// CardList wraps the cards of every player in a room
type CardList struct {
	Cards []PlayerCard `json:"cards"`
}

func RoomFromModel(r *model.Room) Room {
	out := Room{
		ID:           string(r.ID),
		JoinCode:     r.JoinCode,
		Title:        r.Title,
		Status:       string(r.Status),
		IsOpen:       r.IsOpen,
		OptionsPool:  r.OptionsPool,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
	}
	if out.OptionsPool == nil {
		out.OptionsPool = []string{}
	}
	if r.CreatorID != nil {
		id := string(*r.CreatorID)
		out.CreatorID = &id
	}
	return out
}

func CardFromModel(c *model.Card) *Card {
	if c == nil {
		return nil
	}
	out := &Card{
		ID:        string(c.ID),
		PlayerID:  string(c.PlayerID),
		RoomID:    string(c.RoomID),
		Spaces:    make([]Space, 0, len(c.Spaces)),
		CreatedAt: c.CreatedAt,
	}
	for _, s := range c.Spaces {
		out.Spaces = append(out.Spaces, Space{
			Position:    s.Position,
			OptionText:  s.OptionText,
			IsFreeSpace: s.IsFreeSpace,
			IsMarked:    s.IsMarked,
		})
	}
	return out
}

func PlayerFromModel(p *model.Player, c *model.Card) Player {
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		LastSeen:  p.LastSeen,
		CreatedAt: p.CreatedAt,
		Card:      CardFromModel(c),
	}
}

func RoomStateFromSnapshot(snap *room.Snapshot) RoomState {
	state := RoomState{
		Room:    RoomFromModel(snap.Room),
		Players: make([]Player, 0, len(snap.Players)),
	}
	for _, ps := range snap.Players {
		state.Players = append(state.Players, PlayerFromModel(ps.Player, ps.Card))
	}
	return state
}

func ChatMessageFromModel(m *model.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:         string(m.ID),
		PlayerID:   string(m.PlayerID),
		PlayerName: m.PlayerName,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
}

func ChatHistoryFromModels(msgs []*model.ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatMessageFromModel(m))
	}
	return out
}

func GameStateFrom(snap *room.Snapshot, history []*model.ChatMessage) GameState {
	return GameState{
		RoomState:   RoomStateFromSnapshot(snap),
		ChatHistory: ChatHistoryFromModels(history),
	}
}

func CardListFrom(cards []card.CardWithPlayer) CardList {
	out := CardList{Cards: make([]PlayerCard, 0, len(cards))}
	for _, cw := range cards {
		out.Cards = append(out.Cards, PlayerCard{
			PlayerID:   string(cw.Card.PlayerID),
			PlayerName: cw.PlayerName,
			Card:       *CardFromModel(cw.Card),
		})
	}
	return out
}
