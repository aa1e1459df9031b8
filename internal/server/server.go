package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/dialogue"
	"github.com/omriShneor/meeting_assistant/internal/dispatch"
	"github.com/omriShneor/meeting_assistant/internal/gcal"
	"github.com/omriShneor/meeting_assistant/internal/meetings"
	"github.com/omriShneor/meeting_assistant/internal/notify"
	"github.com/omriShneor/meeting_assistant/internal/proposal"
	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

type Server struct {
	db              *database.DB
	engine          *dialogue.Engine
	proposals       *proposal.Service
	meetings        *meetings.Service
	dispatcher      *dispatch.Dispatcher
	gcalClient      *gcal.Client
	mailer          notify.Mailer
	llmProvider     string
	timezone        string
	defaultDuration int
	devMode         bool
	logger          *slog.Logger
	httpSrv         *http.Server
	port            int
}

// Config holds everything the HTTP surface needs. GCal and Mailer may be nil.
// DefaultDuration applies to form submissions that omit a duration.
type Config struct {
	DB              *database.DB
	Engine          *dialogue.Engine
	Proposals       *proposal.Service
	Meetings        *meetings.Service
	Dispatcher      *dispatch.Dispatcher
	GCal            *gcal.Client
	Mailer          notify.Mailer
	LLMProvider     string
	Port            int
	Timezone        string
	DefaultDuration int
	DevMode         bool
	Logger          *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	defaultDuration := cfg.DefaultDuration
	if defaultDuration <= 0 {
		defaultDuration = timeutil.DefaultMinutes
	}

	s := &Server{
		db:              cfg.DB,
		engine:          cfg.Engine,
		proposals:       cfg.Proposals,
		meetings:        cfg.Meetings,
		dispatcher:      cfg.Dispatcher,
		gcalClient:      cfg.GCal,
		mailer:          cfg.Mailer,
		llmProvider:     cfg.LLMProvider,
		timezone:        cfg.Timezone,
		defaultDuration: defaultDuration,
		devMode:         cfg.DevMode,
		logger:          logger,
		port:            cfg.Port,
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // a chat turn may wait on generation and the calendar
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(corsMiddleware)

	r.Get("/api/status", s.handleStatus)

	// Chat
	r.Post("/chat", s.handleChat)
	r.Get("/ws/chat", s.handleChatWebSocket)

	// Email proposals
	r.Post("/api/email/ingest", s.handleIngestEmail)
	r.Get("/api/proposals", s.handleListProposals)
	r.Get("/confirm_meeting/{id}", s.handleConfirmLink)
	r.Post("/confirm_meeting/{id}", s.handleConfirmJSON)

	// Meetings
	r.Get("/meetings", s.handleListMeetings)
	r.Get("/meetings/{id}", s.handleGetMeeting)
	r.Post("/schedule", s.handleSchedule)

	// Google account
	r.Get("/api/gcal/connect", s.handleGCalConnect)
	r.Get(gcal.CallbackPath, s.handleOAuthCallback)

	return r
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", fmt.Sprintf("http://localhost:%d", s.port))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

// corsMiddleware allows browser clients served from other origins
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
