package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	bracketService    services.BracketService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(
	hub *brackets.Hub,
	ts services.TournamentService,
	bs services.BracketService,
	allowedOrigins []string,
	logger *slog.Logger,
) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		bracketService:    bs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeWs godoc
// @Summary Live bracket feed
// @Description Upgrades to a WebSocket that receives a BRACKET_UPDATED message with the full bracket after every change. The current bracket is sent on connect when one exists.
// @Tags brackets
// @Param tournamentID path int true "Tournament ID"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.RoomID(tournamentID),
	}
	if !h.hub.Subscribe(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	h.logger.DebugContext(r.Context(), "websocket client connected", slog.Int("tournament_id", tournamentID))

	// Read only after subscribing so no committed change falls between the two.
	// A broadcast may then arrive before this message; clients keep the highest version.
	initial, err := h.currentBracketMessage(r, tournamentID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to load initial bracket", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	} else if initial != nil {
		client.Deliver(initial)
	}

	go client.WritePump()
	go client.ReadPump()
}

// currentBracketMessage returns nil when the bracket has not been generated yet.
func (h *WebSocketHandler) currentBracketMessage(r *http.Request, tournamentID int) ([]byte, error) {
	bracket, err := h.bracketService.GetBracket(r.Context(), tournamentID)
	if errors.Is(err, services.ErrBracketNotGenerated) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.MessageBracketUpdated,
		Payload: bracket.Bracket,
		RoomID:  brackets.RoomID(tournamentID),
	})
}
