// Package server streams generated dungeon levels over HTTP and websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

// Journal is the session store behind websocket sessions. *database.Database satisfies it.
type Journal interface {
	directory.Journal
	CreateSession(ctx context.Context, baseSeed int64) (int64, error)
	UpdateSessionSeed(ctx context.Context, id, baseSeed int64) error
}

// journalTimeout bounds session bookkeeping writes
const journalTimeout = 2 * time.Second

// Server serves the level API and websocket sessions.
type Server struct {
	cfg         *config.Config
	journal     Journal // nil when the journal is disabled
	connLimiter *ConnLimiter
	levels      *directory.Directory // Shared by the HTTP API
	router      chi.Router
	httpServer  *http.Server

	mu       sync.Mutex
	sessions map[*Session]struct{}

	shutdownOnce sync.Once
}

// New creates a server. journal may be nil.
func New(cfg *config.Config, journal Journal) *Server {
	s := &Server{
		cfg:         cfg,
		journal:     journal,
		connLimiter: NewConnLimiter(cfg.Server.MaxConnsPerIP, cfg.Server.MaxConnsTotal),
		levels:      directory.New(cfg.Dungeon.BaseSeed, directoryOptions(cfg)),
		sessions:    make(map[*Session]struct{}),
	}
	s.router = s.routes()
	return s
}

func directoryOptions(cfg *config.Config) directory.Options {
	return directory.Options{
		WidthInChunks:  cfg.Dungeon.WidthInChunks,
		HeightInChunks: cfg.Dungeon.HeightInChunks,
		PreloadRadius:  cfg.Dungeon.PreloadRadius,
		MaxLevel:       cfg.Dungeon.MaxLevel,
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocketUpgrade)

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.cfg.Server.RequestsPerMinute, time.Minute))
		r.Route("/levels/{level}", func(r chi.Router) {
			r.Get("/", s.handleLevel)
			r.Get("/map", s.handleLevelMap)
			r.Get("/chunks/{x}/{y}", s.handleChunk)
		})
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Server listening", "address", srv.Addr, "base_seed", s.cfg.Dungeon.BaseSeed)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and closes every websocket session.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpServer
		sessions := make([]*Session, 0, len(s.sessions))
		for sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.Unlock()

		if srv != nil {
			err = srv.Shutdown(ctx)
		}

		// Hijacked websocket connections are not tracked by http.Server
		for _, sess := range sessions {
			sess.Close("server shutting down")
		}

		logger.Info("Server shutdown complete", "sessions_closed", len(sessions))
	})
	return err
}

// SessionCount returns the number of open websocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// handleWebSocketUpgrade upgrades an HTTP connection to a websocket session.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	// Check connection limits before upgrading
	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.Server.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.Debug("WebSocket upgrade failed", "client_ip", clientIP, "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	go s.handleWebSocketConnection(wsConn, clientIP)
}

// handleWebSocketConnection runs one session until the client leaves.
func (s *Server) handleWebSocketConnection(wsConn *websocket.Conn, clientIP string) {
	defer s.connLimiter.Release(clientIP)

	sess := newSession(wsConn, clientIP, directory.New(s.cfg.Dungeon.BaseSeed, directoryOptions(s.cfg)))
	sess.conn.SetReadLimit(s.cfg.Server.MaxMessageSize)

	if s.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		id, err := s.journal.CreateSession(ctx, s.cfg.Dungeon.BaseSeed)
		cancel()
		if err != nil {
			logger.Warning("Failed to open journal session", "client_ip", clientIP, "error", err)
		} else {
			sess.attachJournal(s.journal, id)
		}
	}

	s.addSession(sess)
	defer s.removeSession(sess)

	logger.Info("WebSocket session started", "client_ip", clientIP, "session_id", sess.id)
	sess.run()
	logger.Info("WebSocket session ended", "client_ip", clientIP, "session_id", sess.id)
}
