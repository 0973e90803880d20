package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/bingoparty/bingoparty-go/internal/api/response"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/card"
	"github.com/bingoparty/bingoparty-go/internal/services/chat"
	"github.com/bingoparty/bingoparty-go/internal/services/player"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
)

// CardsCreatedPayload announces freshly dealt cards for every player
type CardsCreatedPayload struct {
	Players []response.Player `json:"players"`
}

// OptionEventPayload carries a single pool option
type OptionEventPayload struct {
	Option string `json:"option"`
}

// Gateway upgrades HTTP requests to websocket connections and routes
// room events between clients and the domain services. Every failure is
// reported to the offending client as a private error event, never
// broadcast.
type Gateway struct {
	rooms    *room.Registry
	players  *player.Registry
	cards    *card.Engine
	chat     *chat.Log
	hubs     *HubManager
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewGateway(
	rooms *room.Registry,
	players *player.Registry,
	cards *card.Engine,
	chatLog *chat.Log,
	hubs *HubManager,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		rooms:   rooms,
		players: players,
		cards:   cards,
		chat:    chatLog,
		hubs:    hubs,
		logger:  logger.With(slog.String("component", "gateway")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins; session
			// tokens are the access control, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and runs the connection's pumps
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(g, conn)
	g.logger.Info("ws client connected", slog.String("remote", r.RemoteAddr))

	go client.writePump()
	client.readPump()

	g.logger.Info("ws client disconnected",
		slog.String("remote", r.RemoteAddr),
		slog.String("player_id", string(client.PlayerID())))
}

// dispatch routes a single inbound envelope
func (g *Gateway) dispatch(c *Client, env Envelope) {
	ctx := context.Background()

	var err error
	switch env.Event {
	case EventJoinRoom:
		err = g.handleJoinRoom(ctx, c, env.Data)
	case EventAddOption:
		err = g.handleAddOption(ctx, c, env.Data)
	case EventRemoveOption:
		err = g.handleRemoveOption(ctx, c, env.Data)
	case EventCreateCards:
		err = g.handleCreateCards(ctx, c, env.Data)
	case EventMarkSpace:
		err = g.handleMarkSpace(ctx, c, env.Data)
	case EventUnmarkSpace:
		err = g.handleUnmarkSpace(ctx, c, env.Data)
	case EventCloseRoom:
		err = g.handleCloseRoom(ctx, c, env.Data)
	case EventGetAllCards:
		err = g.handleGetAllCards(ctx, c, env.Data)
	case EventSendChatMessage:
		err = g.handleSendChatMessage(ctx, c, env.Data)
	default:
		c.sendError(fmt.Sprintf("Unknown event: %s", env.Event))
		return
	}

	if err != nil {
		g.logger.Warn("ws event failed",
			slog.String("event", env.Event),
			slog.String("player_id", string(c.PlayerID())),
			slog.String("error", err.Error()))
		c.sendError(errorMessage(err))
	}
}

func (g *Gateway) handleJoinRoom(ctx context.Context, c *Client, data json.RawMessage) error {
	var p JoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid join-room payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	pl, err := g.players.BelongsToRoom(ctx, p.SessionToken, roomID)
	if err != nil {
		return err
	}
	if err := g.players.TouchLastSeen(ctx, pl.ID); err != nil {
		return err
	}

	hub := g.hubs.GetOrCreateHub(roomID)
	hub.Register(c)
	c.bind(hub, roomID, pl.ID)

	hub.BroadcastOthers(c, EventPlayerJoined, PlayerJoinedPayload{
		PlayerID:  string(pl.ID),
		Name:      pl.Name,
		AvatarURL: pl.AvatarURL,
	})

	snap, err := g.rooms.Snapshot(ctx, roomID)
	if err != nil {
		return err
	}
	history, err := g.chat.History(ctx, roomID, 0)
	if err != nil {
		return err
	}
	c.sendEvent(EventGameState, response.GameStateFrom(snap, history))
	return nil
}

func (g *Gateway) handleAddOption(ctx context.Context, c *Client, data json.RawMessage) error {
	var p OptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid add-option payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	if _, err := g.rooms.AddOption(ctx, roomID, p.Option); err != nil {
		return err
	}
	g.hubs.GetOrCreateHub(roomID).Broadcast(EventOptionAdded, OptionEventPayload{Option: p.Option})
	return nil
}

func (g *Gateway) handleRemoveOption(ctx context.Context, c *Client, data json.RawMessage) error {
	var p OptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid remove-option payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	if _, err := g.rooms.RemoveOption(ctx, roomID, p.Option); err != nil {
		return err
	}
	g.hubs.GetOrCreateHub(roomID).Broadcast(EventOptionRemoved, OptionEventPayload{Option: p.Option})
	return nil
}

func (g *Gateway) handleCreateCards(ctx context.Context, c *Client, data json.RawMessage) error {
	var p CreateCardsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid create-cards payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	if err := g.cards.CreateCardsForRoom(ctx, roomID); err != nil {
		return err
	}
	snap, err := g.rooms.Snapshot(ctx, roomID)
	if err != nil {
		return err
	}

	payload := CardsCreatedPayload{Players: make([]response.Player, 0, len(snap.Players))}
	for _, ps := range snap.Players {
		payload.Players = append(payload.Players, response.PlayerFromModel(ps.Player, ps.Card))
	}
	g.hubs.GetOrCreateHub(roomID).Broadcast(EventCardsCreated, payload)
	return nil
}

func (g *Gateway) handleMarkSpace(ctx context.Context, c *Client, data json.RawMessage) error {
	var p SpacePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid mark-space payload", model.ErrValidation)
	}

	space, won, err := g.cards.MarkSpace(ctx, model.CardID(p.CardID), p.Position)
	if err != nil {
		return err
	}

	hub := g.hubs.GetOrCreateHub(model.RoomID(p.RoomID))
	hub.Broadcast(EventSpaceMarked, SpaceMarkedPayload{
		PlayerID:   p.PlayerID,
		CardID:     p.CardID,
		Position:   p.Position,
		OptionText: space.OptionText,
	})

	if won {
		pl, err := g.players.GetByID(ctx, model.PlayerID(p.PlayerID))
		if err != nil {
			return err
		}
		hub.Broadcast(EventPlayerWon, PlayerWonPayload{
			PlayerID: string(pl.ID),
			Name:     pl.Name,
		})
	}
	return nil
}

func (g *Gateway) handleUnmarkSpace(ctx context.Context, c *Client, data json.RawMessage) error {
	var p SpacePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid unmark-space payload", model.ErrValidation)
	}

	space, err := g.cards.UnmarkSpace(ctx, model.CardID(p.CardID), p.Position)
	if err != nil {
		return err
	}
	g.hubs.GetOrCreateHub(model.RoomID(p.RoomID)).Broadcast(EventSpaceUnmarked, SpaceMarkedPayload{
		PlayerID:   p.PlayerID,
		CardID:     p.CardID,
		Position:   p.Position,
		OptionText: space.OptionText,
	})
	return nil
}

func (g *Gateway) handleCloseRoom(ctx context.Context, c *Client, data json.RawMessage) error {
	var p CloseRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid close-room payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	if err := g.rooms.Close(ctx, roomID); err != nil {
		return err
	}
	g.hubs.GetOrCreateHub(roomID).Broadcast(EventRoomClosed, nil)
	return nil
}

func (g *Gateway) handleGetAllCards(ctx context.Context, c *Client, data json.RawMessage) error {
	var p GetAllCardsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid get-all-cards payload", model.ErrValidation)
	}

	cards, err := g.cards.ListCardsInRoom(ctx, model.RoomID(p.RoomID))
	if err != nil {
		return err
	}
	c.sendEvent(EventAllCards, response.CardListFrom(cards))
	return nil
}

func (g *Gateway) handleSendChatMessage(ctx context.Context, c *Client, data json.RawMessage) error {
	var p ChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: invalid send-chat-message payload", model.ErrValidation)
	}
	roomID := model.RoomID(p.RoomID)

	pl, err := g.players.BelongsToRoom(ctx, p.SessionToken, roomID)
	if err != nil {
		return err
	}
	msg, err := g.chat.Append(ctx, roomID, pl.ID, pl.Name, p.Message)
	if err != nil {
		return err
	}
	g.hubs.GetOrCreateHub(roomID).Broadcast(EventChatMessage, response.ChatMessageFromModel(msg))
	return nil
}

// errorMessage translates a domain error into the message carried by
// the private error event
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return err.Error()
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrPlayerNotFound):
		return "Invalid session"
	case errors.Is(err, model.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, model.ErrSpaceNotFound):
		return "Space not found"
	case errors.Is(err, model.ErrFreeSpace):
		return "The free space cannot be changed"
	case errors.Is(err, model.ErrRoomClosed):
		return "Room is closed"
	case errors.Is(err, model.ErrRoomNotInLobby):
		return "Options can only be changed in the lobby"
	case errors.Is(err, model.ErrCardsAlreadyCreated):
		return "Cards have already been created"
	case errors.Is(err, model.ErrPoolTooSmall):
		return fmt.Sprintf("At least %d options are required to create cards", model.PoolMinimum)
	case errors.Is(err, model.ErrGeneratorUnavailable):
		return "Option generation is currently unavailable"
	default:
		return "Internal server error"
	}
}
