package ws

import (
	"encoding/json"
	"fmt"
)

// Inbound event names (client -> server)
const (
	EventJoinRoom        = "join-room"
	EventAddOption       = "add-option"
	EventRemoveOption    = "remove-option"
	EventCreateCards     = "create-cards"
	EventMarkSpace       = "mark-space"
	EventUnmarkSpace     = "unmark-space"
	EventCloseRoom       = "close-room"
	EventGetAllCards     = "get-all-cards"
	EventSendChatMessage = "send-chat-message"
)

// Outbound event names (server -> client)
const (
	EventError         = "error"
	EventGameState     = "game-state"
	EventPlayerJoined  = "player-joined"
	EventOptionAdded   = "option-added"
	EventOptionRemoved = "option-removed"
	EventCardsCreated  = "cards-created"
	EventSpaceMarked   = "space-marked"
	EventSpaceUnmarked = "space-unmarked"
	EventPlayerWon     = "player-won"
	EventRoomClosed    = "room-closed"
	EventAllCards      = "all-cards"
	EventChatMessage   = "chat-message"
)

// Envelope is the wire format in both directions: an event name and a
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEvent marshals an outbound envelope
func encodeEvent(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", event, err)
		}
		data = b
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Inbound payloads

type JoinRoomPayload struct {
	RoomID       string `json:"roomId"`
	SessionToken string `json:"sessionToken"`
}

type OptionPayload struct {
	RoomID string `json:"roomId"`
	Option string `json:"option"`
}

type CreateCardsPayload struct {
	RoomID string `json:"roomId"`
}

type SpacePayload struct {
	CardID   string `json:"cardId"`
	Position int    `json:"position"`
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}

type CloseRoomPayload struct {
	RoomID string `json:"roomId"`
}

type GetAllCardsPayload struct {
	RoomID string `json:"roomId"`
}

type ChatPayload struct {
	RoomID       string `json:"roomId"`
	SessionToken string `json:"sessionToken"`
	Message      string `json:"message"`
}

// Outbound payloads

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerJoinedPayload struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type SpaceMarkedPayload struct {
	PlayerID   string `json:"playerId"`
	CardID     string `json:"cardId"`
	Position   int    `json:"position"`
	OptionText string `json:"optionText"`
}

type PlayerWonPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}
