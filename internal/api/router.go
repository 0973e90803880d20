package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bingoparty/bingoparty-go/internal/api/handler"
	"github.com/bingoparty/bingoparty-go/internal/api/middleware"
	"github.com/bingoparty/bingoparty-go/internal/services/card"
	"github.com/bingoparty/bingoparty-go/internal/services/chat"
	"github.com/bingoparty/bingoparty-go/internal/services/player"
	"github.com/bingoparty/bingoparty-go/internal/services/room"
	"github.com/bingoparty/bingoparty-go/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Rooms      *room.Registry
	Players    *player.Registry
	Cards      *card.Engine
	Chat       *chat.Log
	HubManager *ws.HubManager
	Gateway    *ws.Gateway
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Players, cfg.Cards, cfg.Chat, cfg.HubManager)

	authMiddleware := middleware.Auth(cfg.Players)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Room routes that need no session
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/by-code/{join_code}", roomHandler.Lookup).Methods(http.MethodGet)
	api.HandleFunc("/rooms/by-code/{join_code}/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}", roomHandler.Get).Methods(http.MethodGet)

	// Room routes requiring a session token
	protected := api.PathPrefix("/rooms").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/{room_id}/close", roomHandler.Close).Methods(http.MethodPost)
	protected.HandleFunc("/{room_id}/cards", roomHandler.Cards).Methods(http.MethodGet)
	protected.HandleFunc("/{room_id}/chat", roomHandler.Chat).Methods(http.MethodGet)

	// Websocket endpoint. Authentication happens inside the connection
	// via the join-room event, so only recovery wraps it.
	r.Handle("/ws", middleware.Recovery(cfg.Logger)(http.HandlerFunc(cfg.Gateway.HandleWS)))

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
