package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/omriShneor/meeting_assistant/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket chat server",
	Long: `Start the HTTP server with the chat, email ingest and confirmation
endpoints. When GMAIL_POLL_INTERVAL is set, the Gmail watcher runs alongside.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr, true)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.startWatcher(ctx)

	srv := server.New(server.Config{
		DB:              a.db,
		Engine:          a.engine,
		Proposals:       a.proposals,
		Meetings:        a.meetings,
		Dispatcher:      a.dispatcher,
		GCal:            a.gcalClient,
		Mailer:          a.mailer,
		LLMProvider:     a.provider,
		Port:            cfg.HTTPPort,
		Timezone:        cfg.DefaultTimezone,
		DefaultDuration: cfg.DefaultMeetingDuration,
		DevMode:         cfg.DevMode,
		Logger:          logger.With("component", "server"),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if worker := a.gmailWorker(); worker != nil {
		worker.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			worker.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
