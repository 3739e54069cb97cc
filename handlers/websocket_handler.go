package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/pickleball-tournament/brackets"
	"github.com/Dosada05/pickleball-tournament/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService *services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler принимает список разрешенных Origin; пустой список или "*"
// разрешают любые подключения.
func NewWebSocketHandler(hub *brackets.Hub, ts *services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		logger:            logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs подключает зрителя к комнате турнира (/ws/tournament). Сразу после
// подключения клиент получает текущее состояние, дальше только обновления.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, brackets.TournamentRoom)
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	// Состояние читается уже после входа в комнату: изменение, случившееся между
	// этими шагами, придет отдельным сообщением и не будет потеряно.
	if !h.hub.SendTo(client, brackets.MessageTournamentState, h.tournamentService.State()) {
		h.logger.Warn("failed to queue initial tournament state")
	}

	go client.WritePump()
	go client.ReadPump()
}
