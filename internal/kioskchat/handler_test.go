package kioskchat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

func newTestHandler(t *testing.T) (*Handler, *assistant.Service) {
	t.Helper()
	store := assistant.NewContextStore(assistant.StoreConfig{}, nil, nil, nil, nil)
	analyzer := assistant.NewAnalyzer(nil, nil, nil)
	sentiment := assistant.NewSentimentAnalyzer(nil, time.Minute, nil, nil)
	matcher := assistant.NewMatcher(assistant.DefaultCatalog(), 0.3)
	service := assistant.NewService(store, analyzer, sentiment, matcher, nil, nil, nil)
	return NewHandler(service, logging.New("error")), service
}

func dialChat(t *testing.T, serverURL, session string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws/chat"
	if session != "" {
		wsURL += "?session=" + session
	}
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receiveFrame(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestWebSocketSessionFrameAndPing(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn := dialChat(t, server.URL, "")

	session := receiveFrame(t, conn)
	assert.Equal(t, "session", session.Type)
	assert.NotEmpty(t, session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	pong := receiveFrame(t, conn)
	assert.Equal(t, "pong", pong.Type)
}

func TestWebSocketMessageRoundTrip(t *testing.T) {
	h, svc := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn := dialChat(t, server.URL, "tablet-1")

	session := receiveFrame(t, conn)
	require.Equal(t, "session", session.Type)
	assert.Equal(t, "tablet-1", session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hola buenos dias"}))

	typing := receiveFrame(t, conn)
	assert.Equal(t, "typing", typing.Type)

	reply := receiveFrame(t, conn)
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, assistant.RoleAssistant, reply.Role)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, assistant.StageGreeting, reply.Stage)

	sctx, err := svc.Store().Get(context.Background(), "tablet-1")
	require.NoError(t, err)
	assert.Len(t, sctx.Messages, 2)
}

func TestWebSocketHistoryReplay(t *testing.T) {
	h, svc := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	ctx := context.Background()
	_, err := svc.Store().Create(ctx, "tablet-1", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Store().Update(ctx, "tablet-1", assistant.Message{Role: assistant.RoleUser, Content: "hola"}, nil))
	require.NoError(t, svc.Store().Update(ctx, "tablet-1", assistant.Message{Role: assistant.RoleAssistant, Content: "¡Hola!"}, nil))

	conn := dialChat(t, server.URL, "tablet-1")

	session := receiveFrame(t, conn)
	require.Equal(t, "session", session.Type)

	history := receiveFrame(t, conn)
	require.Equal(t, "history", history.Type)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, assistant.RoleUser, history.Messages[0].Role)
	assert.Equal(t, "hola", history.Messages[0].Text)
	assert.Equal(t, assistant.RoleAssistant, history.Messages[1].Role)
}

func TestWebSocketIgnoresBlankMessages(t *testing.T) {
	h, svc := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn := dialChat(t, server.URL, "tablet-1")
	receiveFrame(t, conn) // session frame

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "   "}))
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))

	// The pong arrives without any turn having run.
	pong := receiveFrame(t, conn)
	assert.Equal(t, "pong", pong.Type)
	assert.Equal(t, 0, svc.Store().Count())
}

func TestSendToSessionWithoutConnection(t *testing.T) {
	h, _ := newTestHandler(t)
	// Must not panic when no tablet is connected.
	h.SendToSession("ghost", OutboundMessage{Type: "message", Text: "hola"})
	assert.Equal(t, 0, h.ActiveConnections())
}
