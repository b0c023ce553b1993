package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
)

// GameLookup confirms a game exists before a viewer subscribes to it.
type GameLookup interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
}

type WebSocketHandler struct {
	hub      *brackets.Hub
	games    GameLookup
	upgrader websocket.Upgrader
	responder
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *brackets.Hub, games GameLookup, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		responder: responder{logger: logger},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeWs subscribes the connection to live bracket events of one game.
// Clients connect to /ws/games/{gameID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if _, err := h.games.GetGame(r.Context(), gameID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.String("game_id", gameID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.GameRoom(gameID),
	}
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client subscribed", slog.String("game_id", gameID))
}
