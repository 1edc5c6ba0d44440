package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/http/handlers"
	httpmiddleware "github.com/ProgramacionCECADE/kiosk-assistant/internal/http/middleware"
	"github.com/ProgramacionCECADE/kiosk-assistant/internal/kioskchat"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	AssistantHandler   *handlers.AssistantHandler
	ChatHandler        *kioskchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.AssistantHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/sessions", cfg.AssistantHandler.CreateSession)
		v1.Delete("/sessions", cfg.AssistantHandler.ResetAll)
		v1.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Get("/", cfg.AssistantHandler.GetSession)
			sr.Post("/messages", cfg.AssistantHandler.PostMessage)
		})
	})

	if cfg.ChatHandler != nil {
		r.Get("/ws/chat", cfg.ChatHandler.HandleWebSocket)
	}

	return r
}
