package realtime

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/presence"
)

// Server serves the collaborative rooms over websockets.
type Server struct {
	cfg         config.RealtimeConfig
	coordinator *presence.Coordinator
	logger      *zap.Logger
	server      *http.Server
}

func NewServer(cfg config.RealtimeConfig, coordinator *presence.Coordinator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, coordinator: coordinator, logger: logger}
	s.server = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.Router(),
	}
	return s
}

// Router builds the chi router with /ping and /ws.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("pong"))
		if err != nil {
			return
		}
	})

	wsHandler := NewWebSocketHandler(s.coordinator, s.cfg.AllowedOrigin, s.cfg.SendBuffer, s.logger)
	router.HandleFunc("/ws", wsHandler.Handle)
	return router
}

// Start blocks serving until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("realtime server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("realtime server error", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if err != nil {
		s.logger.Error("realtime server shutdown", zap.Error(err))
	}
	return err
}
