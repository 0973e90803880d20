package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bingoparty/bingoparty-go/internal/api/middleware"
	"github.com/bingoparty/bingoparty-go/internal/api/request"
	"github.com/bingoparty/bingoparty-go/internal/api/response"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/card"
	"github.com/bingoparty/bingoparty-go/internal/services/chat"
	"github.com/bingoparty/bingoparty-go/internal/services/player"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
	"github.com/bingoparty/bingoparty-go/internal/ws"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	rooms   *room.Registry
	players *player.Registry
	cards   *card.Engine
	chat    *chat.Log
	hubs    *ws.HubManager
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	rooms *room.Registry,
	players *player.Registry,
	cards *card.Engine,
	chatLog *chat.Log,
	hubs *ws.HubManager,
) *RoomHandler {
	return &RoomHandler{
		rooms:   rooms,
		players: players,
		cards:   cards,
		chat:    chatLog,
		hubs:    hubs,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	mode := room.PrePopulateMode(req.PrePopulate)
	if mode == "" {
		mode = room.PrePopulateOff
	}
	switch mode {
	case room.PrePopulateOff, room.PrePopulatePlaceholders, room.PrePopulateAI:
	default:
		WriteError(w, NewInvalidRequestError("Unknown prePopulate mode"))
		return
	}

	created, err := h.rooms.CreateRoom(r.Context(), req.Title, mode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomCreated{
		RoomID:   string(created.ID),
		JoinCode: created.JoinCode,
		Title:    created.Title,
	})
}

// Get handles GET /api/v1/rooms/{room_id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	snap, err := h.rooms.Snapshot(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomStateFromSnapshot(snap))
}

// Lookup handles GET /api/v1/rooms/by-code/{join_code}
func (h *RoomHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["join_code"]

	found, err := h.rooms.GetByJoinCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomSummary{
		ID:       string(found.ID),
		JoinCode: found.JoinCode,
		Title:    found.Title,
		Status:   string(found.Status),
		IsOpen:   found.IsOpen,
	})
}

// Join handles POST /api/v1/rooms/by-code/{join_code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["join_code"]

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	found, err := h.rooms.GetByJoinCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	pl, err := h.players.Join(r.Context(), found.ID, req.Name, req.AvatarURL)
	if err != nil {
		WriteError(w, err)
		return
	}

	result := response.JoinResult{
		RoomID:       string(found.ID),
		PlayerID:     string(pl.ID),
		SessionToken: pl.SessionToken,
	}

	// A player joining mid-game gets a card dealt immediately
	if found.Status == model.RoomStatusPlaying {
		newCard, err := h.cards.CreateCardForPlayer(r.Context(), pl.ID, found.ID, found.OptionsPool)
		if err != nil {
			WriteError(w, err)
			return
		}
		result.Card = response.CardFromModel(newCard)
	}

	response.JSON(w, http.StatusCreated, result)
}

// Close handles POST /api/v1/rooms/{room_id}/close
func (h *RoomHandler) Close(w http.ResponseWriter, r *http.Request) {
	pl := middleware.MustGetPlayer(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	if pl.RoomID != roomID {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	if err := h.rooms.Close(r.Context(), roomID); err != nil {
		WriteError(w, err)
		return
	}

	if hub := h.hubs.GetHub(roomID); hub != nil {
		hub.Broadcast(ws.EventRoomClosed, nil)
	}

	response.NoContent(w)
}

// Cards handles GET /api/v1/rooms/{room_id}/cards
func (h *RoomHandler) Cards(w http.ResponseWriter, r *http.Request) {
	pl := middleware.MustGetPlayer(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	if pl.RoomID != roomID {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	cards, err := h.cards.ListCardsInRoom(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CardListFrom(cards))
}

// Chat handles GET /api/v1/rooms/{room_id}/chat
func (h *RoomHandler) Chat(w http.ResponseWriter, r *http.Request) {
	pl := middleware.MustGetPlayer(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	if pl.RoomID != roomID {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	history, err := h.chat.History(r.Context(), roomID, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChatHistoryFromModels(history))
}
