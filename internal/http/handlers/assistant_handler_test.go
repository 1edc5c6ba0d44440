package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
)

func newTestRouter(t *testing.T) (*chi.Mux, *assistant.Service) {
	t.Helper()
	store := assistant.NewContextStore(assistant.StoreConfig{}, nil, nil, nil, nil)
	analyzer := assistant.NewAnalyzer(nil, nil, nil)
	sentiment := assistant.NewSentimentAnalyzer(nil, time.Minute, nil, nil)
	matcher := assistant.NewMatcher(assistant.DefaultCatalog(), 0.3)
	service := assistant.NewService(store, analyzer, sentiment, matcher, nil, nil, nil)
	handler := NewAssistantHandler(service, nil)

	r := chi.NewRouter()
	r.Get("/health", handler.HealthCheck)
	r.Post("/v1/sessions", handler.CreateSession)
	r.Delete("/v1/sessions", handler.ResetAll)
	r.Route("/v1/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", handler.GetSession)
		sr.Post("/messages", handler.PostMessage)
	})
	return r, service
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCreateSessionGeneratesID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	var session assistant.SessionContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, assistant.StageGreeting, session.Flow.Stage)
}

func TestCreateSessionWithExplicitIDAndProfile(t *testing.T) {
	r, svc := newTestRouter(t)

	payload := bytes.NewBufferString(`{"session_id": "tablet-1", "profile": {"detected_level": "beginner"}}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", payload))

	require.Equal(t, http.StatusCreated, rec.Code)
	session, err := svc.Store().Get(context.Background(), "tablet-1")
	require.NoError(t, err)
	assert.Equal(t, assistant.LevelBeginner, session.Profile.DetectedLevel)
}

func TestCreateSessionDuplicateConflicts(t *testing.T) {
	r, _ := newTestRouter(t)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"session_id": "tablet-1"}`)))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"session_id": "tablet-1"}`)))
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/ghost/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageRunsTurn(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	payload := bytes.NewBufferString(`{"text": "hola buenos dias"}`)
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/tablet-1/messages", payload))

	require.Equal(t, http.StatusOK, rec.Code)
	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "tablet-1", reply.SessionID)
	assert.Equal(t, assistant.ReplySourceTemplate, reply.Source)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, assistant.StageGreeting, reply.Stage)

	show := httptest.NewRecorder()
	r.ServeHTTP(show, httptest.NewRequest(http.MethodGet, "/v1/sessions/tablet-1/", nil))
	require.Equal(t, http.StatusOK, show.Code)
	var session assistant.SessionContext
	require.NoError(t, json.Unmarshal(show.Body.Bytes(), &session))
	assert.Len(t, session.Messages, 2)
}

func TestPostMessageInvalidBody(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions/tablet-1/messages", bytes.NewBufferString("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetAll(t *testing.T) {
	r, svc := newTestRouter(t)

	create := httptest.NewRecorder()
	r.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"session_id": "tablet-1"}`)))
	require.Equal(t, http.StatusCreated, create.Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, svc.Store().Count())
}
