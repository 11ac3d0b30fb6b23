// Package server exposes the study tracker's REST API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skeleton-pawn/stweb/internal/analytics"
	"github.com/skeleton-pawn/stweb/internal/auth"
	"github.com/skeleton-pawn/stweb/internal/config"
	"github.com/skeleton-pawn/stweb/internal/db"
)

// VersionInfo holds build-time version metadata.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server is the HTTP server for the REST API. Runtime configuration
// (subjects, cutoff hour, message templates) can be swapped via
// ApplyConfig while the server is running.
type Server struct {
	mu       sync.RWMutex
	cfg      config.Config
	stats    *analytics.Analytics
	verifier auth.Verifier

	db      *db.DB
	mux     *http.ServeMux
	httpSrv *http.Server
	version VersionInfo

	// handlerDelay is injected before each timeout-wrapped
	// handler, used only by tests to guarantee handlers
	// exceed a short timeout. Zero in production.
	handlerDelay time.Duration

	// now overrides the clock in tests. Threaded into the
	// analytics so study-date math is deterministic.
	now func() time.Time
}

// New creates a new Server.
func New(cfg config.Config, database *db.DB, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		db:  database,
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.applyConfigLocked(cfg)
	s.routes()
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the build-time version metadata.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithHandlerDelay delays every timeout-wrapped handler, for
// timeout tests.
func WithHandlerDelay(d time.Duration) Option {
	return func(s *Server) { s.handlerDelay = d }
}

// ApplyConfig swaps the runtime configuration: subject list, cutoff
// hour, timezone, window set, message templates, and API password.
// Host/port changes require a restart and are ignored here.
func (s *Server) ApplyConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfigLocked(cfg)
}

func (s *Server) applyConfigLocked(cfg config.Config) {
	s.cfg.Timezone = cfg.Timezone
	s.cfg.CutoffHour = cfg.CutoffHour
	s.cfg.Subjects = cfg.Subjects
	s.cfg.ComparisonWindows = cfg.ComparisonWindows
	s.cfg.Messages = cfg.Messages
	s.cfg.APIPassword = cfg.APIPassword

	if cfg.APIPassword == "" {
		s.verifier = auth.Open()
	} else {
		s.verifier = auth.NewPasswordVerifier(cfg.APIPassword)
	}
	s.stats = analytics.New(s.db, analytics.Options{
		Subjects:   cfg.Subjects,
		CutoffHour: cfg.CutoffHour,
		Location:   cfg.Location(),
		Windows:    cfg.ComparisonWindows,
		Messages:   cfg.Messages,
		Now:        s.now,
	})
}

// analytics returns the current analytics instance (thread-safe).
func (s *Server) analytics() *analytics.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Server) routes() {
	s.mux.Handle("GET /api/subjects",
		s.protected(s.withTimeout(s.handleSubjects)))
	s.mux.Handle("POST /api/record-session",
		s.protected(s.withTimeout(s.handleRecordSession)))
	s.mux.Handle("GET /api/today-stats",
		s.protected(s.withTimeout(s.handleTodayStats)))
	s.mux.Handle("GET /api/statistics/{days}",
		s.protected(s.withTimeout(s.handleStatistics)))
	s.mux.Handle("GET /api/subject-comparison",
		s.protected(s.withTimeout(s.handleSubjectComparison)))
	s.mux.Handle("GET /api/streak-info",
		s.protected(s.withTimeout(s.handleStreakInfo)))
	s.mux.Handle("GET /api/version",
		s.protected(s.withTimeout(s.handleGetVersion)))

	// Liveness: outside the auth gate, never touches the store.
	s.mux.Handle("GET /api/health", s.withTimeout(s.handleHealth))
}

// protected gates a handler behind the current credential verifier.
// The verifier is read per request so a config reload takes effect
// without rebuilding routes.
func (s *Server) protected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		v := s.verifier
		s.mu.RUnlock()
		auth.Middleware(v, next).ServeHTTP(w, r)
	})
}

func (s *Server) handleGetVersion(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.version)
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(logMiddleware(s.mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()
	log.Printf("Starting server at http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpSrv
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// FindAvailablePort finds an available port starting from the given
// port, binding to the specified host.
func FindAvailablePort(host string, start int) int {
	for port := start; port < start+100; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			ln.Close()
			return port
		}
	}
	return start
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set(
				"Access-Control-Allow-Methods",
				"GET, POST, OPTIONS",
			)
			w.Header().Set(
				"Access-Control-Allow-Headers",
				"Content-Type, Authorization",
			)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
