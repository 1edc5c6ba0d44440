package kioskchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// Handler manages kiosk tablet connections and messages. The tablet sends
// committed speech transcripts (or typed text) and receives plain replies the
// frontend can speak and animate.
type Handler struct {
	service *assistant.Service
	logger  *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the kiosk frontend sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the kiosk frontend.
type OutboundMessage struct {
	Type       string           `json:"type"` // "message", "typing", "history", "session", "error", "pong"
	Text       string           `json:"text,omitempty"`
	Role       string           `json:"role,omitempty"`
	SessionID  string           `json:"session_id,omitempty"`
	Stage      string           `json:"stage,omitempty"`
	Engagement string           `json:"engagement,omitempty"`
	Timestamp  string           `json:"timestamp,omitempty"`
	Messages   []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a kiosk chat handler.
func NewHandler(service *assistant.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	// A reconnecting tablet gets its transcript back.
	if sctx, err := h.service.Store().Get(r.Context(), sessionID); err == nil && len(sctx.Messages) > 0 {
		history := make([]HistoryMessage, 0, len(sctx.Messages))
		for _, m := range sctx.Messages {
			history = append(history, HistoryMessage{
				Role:      m.Role,
				Text:      m.Content,
				Timestamp: m.Timestamp.Format(time.RFC3339),
			})
		}
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("kioskchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("kioskchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), sessionID, msg.Text)
	}
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	h.SendToSession(sessionID, OutboundMessage{Type: "typing"})

	reply, err := h.service.HandleUtterance(ctx, sessionID, text)
	if err != nil {
		// A superseded turn was replaced by a newer utterance; stay quiet.
		if err == assistant.ErrSuperseded {
			return
		}
		h.logger.Error("kioskchat: turn failed", "session_id", sessionID, "error", err.Error())
		h.SendToSession(sessionID, OutboundMessage{
			Type: "error",
			Text: "No pude procesar tu mensaje, intenta de nuevo.",
		})
		return
	}

	h.SendToSession(sessionID, OutboundMessage{
		Type:       "message",
		Role:       assistant.RoleAssistant,
		Text:       reply.Text,
		Stage:      reply.Stage,
		Engagement: reply.Engagement,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// SendToSession pushes a frame to the session's active connection, if any.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := websocket.JSON.Send(wsc.conn, msg); err != nil {
		h.logger.Debug("kioskchat: send failed", "session_id", sessionID, "error", err)
	}
}

// ActiveConnections returns the number of open kiosk connections.
func (h *Handler) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
