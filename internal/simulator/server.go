// Package simulator serves a scripted RMonitor session over websocket so
// the client can be exercised without live timing hardware. Each
// connection gets the full opening burst followed by periodic update
// ticks, liveness probes, and the occasional banner.
package simulator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/pitwall/pkg/logger"
)

// Server tuning constants.
const (
	defaultTick        = 1 * time.Second
	defaultProbeEveryN = 5
	defaultNoticeEvery = 15
	writeTimeout       = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Server streams scripted sessions to any number of clients.
type Server struct {
	cfg    *Config
	logger logger.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	stats Stats
}

// NewServer creates a simulator server for the given config.
func NewServer(cfg *Config) *Server {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	if cfg.ProbeEveryN <= 0 {
		cfg.ProbeEveryN = defaultProbeEveryN
	}
	if cfg.NoticeEvery <= 0 {
		cfg.NoticeEvery = defaultNoticeEvery
	}
	return &Server{
		cfg:      cfg,
		logger:   logger.Get().Named("simulator"),
		upgrader: websocket.Upgrader{},
	}
}

// Stats returns a copy of the current counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Handler returns the HTTP handler serving the stream endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.handleStream)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.stats.StartTime = time.Now()
	s.mu.Unlock()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "simulator listening",
		logger.String("addr", s.cfg.Addr),
		logger.Duration("tick", s.cfg.Tick),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleStream upgrades the connection and plays one scripted session.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "upgrade failed", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.stats.ClientsServed++
	s.mu.Unlock()

	session := NewSession(s.cfg.Cars, s.cfg.Classes, s.cfg.QualTicks, s.cfg.RaceLaps)
	ctx := r.Context()
	s.logger.Info(ctx, "client connected",
		logger.String("session", session.ID()),
		logger.String("remote", conn.RemoteAddr().String()),
	)

	// Reads are only handshake records and pong replies; they are counted
	// and logged, never interpreted.
	go s.drainClient(ctx, conn)

	if !s.send(ctx, conn, session.OpeningBurst()) {
		return
	}

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !s.send(ctx, conn, session.Tick(n)) {
			return
		}
		if n%s.cfg.ProbeEveryN == 0 {
			if !s.send(ctx, conn, [][]byte{[]byte("ping")}) {
				return
			}
			s.mu.Lock()
			s.stats.ProbesSent++
			s.mu.Unlock()
		}
		if n%s.cfg.NoticeEvery == 0 {
			if !s.send(ctx, conn, [][]byte{Notice()}) {
				return
			}
		}
		if session.Done(n) {
			s.logger.Info(ctx, "session complete", logger.String("session", session.ID()))
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session complete")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, frames [][]byte) bool {
	for _, frame := range frames {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.logger.Warn(ctx, "write failed", logger.Error(err))
			return false
		}
		s.mu.Lock()
		s.stats.FramesSent++
		s.mu.Unlock()
	}
	return true
}

func (s *Server) drainClient(ctx context.Context, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.mu.Lock()
		if string(payload) == "pong" {
			s.stats.PongsReceived++
		} else {
			s.stats.RecordsFromClient++
		}
		s.mu.Unlock()
		if s.cfg.Verbose {
			s.logger.Debug(ctx, "client record", logger.String("payload", string(payload)))
		}
	}
}
