package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/config"
	"github.com/omriShneor/meeting_assistant/internal/contacts"
	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/dialogue"
	"github.com/omriShneor/meeting_assistant/internal/dispatch"
	"github.com/omriShneor/meeting_assistant/internal/gcal"
	"github.com/omriShneor/meeting_assistant/internal/gmail"
	"github.com/omriShneor/meeting_assistant/internal/intent"
	"github.com/omriShneor/meeting_assistant/internal/llm"
	"github.com/omriShneor/meeting_assistant/internal/meetings"
	"github.com/omriShneor/meeting_assistant/internal/notify"
	"github.com/omriShneor/meeting_assistant/internal/proposal"
	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

// app holds the wired components shared by serve and chat.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *database.DB
	directory  *contacts.Directory
	watcher    *contacts.Watcher
	provider   string
	gcalClient *gcal.Client
	mailer     *notify.ResendMailer
	meetings   *meetings.Service
	dispatcher *dispatch.Dispatcher
	proposals  *proposal.Service
	engine     *dialogue.Engine
}

func loadConfig() (*config.Config, error) {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	a.directory, err = contacts.Open(cfg.ContactsFile)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	if cfg.ContactsFile != "" {
		a.watcher, err = contacts.NewWatcher(cfg.ContactsFile, a.directory, logger)
		if err != nil {
			logger.Warn("contacts hot reload disabled", "error", err)
		}
	}
	logger.Info("contacts loaded", "count", a.directory.Len())

	gen, model, err := llm.NewFromConfig(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure generation service: %w", err)
	}
	a.provider = cfg.LLMProvider
	logger.Info("generation service configured", "provider", cfg.LLMProvider, "model", model)

	// Scheduling still works without Google; meetings are then stored locally only.
	var calendar meetings.Calendar
	a.gcalClient, err = gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, cfg.BaseURL+gcal.CallbackPath)
	if err != nil {
		logger.Warn("Google Calendar not configured", "error", err)
		a.gcalClient = nil
	} else {
		calendar = a.gcalClient
		if !a.gcalClient.IsAuthenticated() {
			logger.Warn("Google Calendar not connected, run 'assistant auth' or visit /api/gcal/connect")
		}
	}

	a.mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.FromAddress, logger)
	if !a.mailer.IsConfigured() {
		logger.Warn("RESEND_API_KEY not set, emails will not be sent")
	}

	a.meetings = meetings.NewService(db, calendar, cfg.DefaultTimezone, logger)
	a.dispatcher = dispatch.New(dispatch.Deps{
		Meetings:        a.meetings,
		ContextProvider: a.meetings,
		Mailer:          a.mailer,
		Generator:       gen,
		HistoryLength:   cfg.MaxHistoryLength,
		Logger:          logger.With("component", "dispatch"),
	})
	loc, _ := timeutil.ResolveLocation(cfg.DefaultTimezone)
	a.proposals = proposal.NewService(proposal.NewWorkflow(), a.dispatcher, cfg.BaseURL, loc, logger.With("component", "proposals"))
	a.engine = dialogue.NewEngine(
		dialogue.NewStore(),
		intent.NewExtractor(gen, a.directory, loc, logger),
		a.dispatcher,
		a.meetings,
		a.proposals,
		dialogue.Config{HistoryWindow: cfg.MaxHistoryLength},
		logger.With("component", "dialogue"),
	)

	return a, nil
}

// startWatcher begins contacts hot reload when a contacts file is configured.
func (a *app) startWatcher(ctx context.Context) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Start(ctx); err != nil {
		a.logger.Warn("failed to watch contacts file", "error", err)
		a.watcher = nil
	}
}

// gmailWorker returns nil when polling is disabled.
func (a *app) gmailWorker() *gmail.Worker {
	if a.cfg.GmailPollInterval <= 0 || a.gcalClient == nil {
		return nil
	}

	clientFn := func(ctx context.Context) (*gmail.Client, error) {
		httpClient := a.gcalClient.HTTPClient(ctx)
		if httpClient == nil {
			return nil, nil
		}
		return gmail.NewClient(ctx, httpClient)
	}

	return gmail.NewWorker(clientFn, a.db, a.proposals, gmail.WorkerConfig{
		Query:        a.cfg.GmailQuery,
		PollInterval: time.Duration(a.cfg.GmailPollInterval) * time.Minute,
	}, a.logger)
}

func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn("failed to stop contacts watcher", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
