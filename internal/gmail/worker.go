package gmail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/proposal"
)

// Outcomes recorded for processed messages.
const (
	OutcomePending          = "pending"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeError            = "error"
)

// DBInterface defines the database operations needed by the Gmail worker
type DBInterface interface {
	IsEmailProcessed(emailID string) (bool, error)
	MarkEmailProcessed(emailID string, proposalID int64, outcome string) error
}

// Submitter turns a raw email into a pending meeting proposal.
type Submitter interface {
	Submit(ctx context.Context, raw string) (*proposal.Submission, error)
}

// ClientFunc returns a ready Gmail client, or nil while Google is not connected.
type ClientFunc func(ctx context.Context) (*Client, error)

// Worker polls Gmail for meeting requests and submits each one once.
type Worker struct {
	clientFn     ClientFunc
	db           DBInterface
	submitter    Submitter
	query        string
	pollInterval time.Duration
	maxEmails    int64
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerConfig contains configuration for the email worker
type WorkerConfig struct {
	Query            string
	PollInterval     time.Duration
	MaxEmailsPerPoll int
}

// NewWorker creates a new Gmail worker
func NewWorker(clientFn ClientFunc, db DBInterface, submitter Submitter, config WorkerConfig, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}

	maxEmails := int64(config.MaxEmailsPerPoll)
	if maxEmails <= 0 {
		maxEmails = 10
	}

	return &Worker{
		clientFn:     clientFn,
		db:           db,
		submitter:    submitter,
		query:        config.Query,
		pollInterval: pollInterval,
		maxEmails:    maxEmails,
		logger:       logger.With("component", "gmail_worker"),
	}
}

// Start begins the background polling loop. It returns immediately.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("starting", "poll_interval", w.pollInterval, "query", w.query)

	w.wg.Add(1)
	go w.pollLoop(ctx)
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("stopped")
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll performs a single polling cycle and returns how many new messages
// were submitted.
func (w *Worker) Poll(ctx context.Context) int {
	client, err := w.clientFn(ctx)
	if err != nil {
		w.logger.Warn("gmail client unavailable", "error", err)
		return 0
	}
	if client == nil {
		return 0
	}

	ids, err := client.ListMessageIDs(ctx, w.query, w.maxEmails)
	if err != nil {
		w.logger.Error("failed to list messages", "error", err)
		return 0
	}

	submitted := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		processed, err := w.db.IsEmailProcessed(id)
		if err != nil {
			w.logger.Error("failed to check processed status", "email_id", id, "error", err)
			continue
		}
		if processed {
			continue
		}
		if w.process(ctx, client, id) {
			submitted++
		}
	}

	if submitted > 0 {
		w.logger.Info("submitted meeting requests", "count", submitted)
	}
	return submitted
}

func (w *Worker) process(ctx context.Context, client *Client, id string) bool {
	logger := w.logger.With("email_id", id)

	raw, err := client.GetRaw(ctx, id)
	if err != nil {
		// Left unmarked so the next poll retries it.
		logger.Error("failed to fetch message", "error", err)
		return false
	}

	var (
		proposalID int64
		outcome    = OutcomePending
	)
	sub, err := w.submitter.Submit(ctx, raw)
	switch {
	case errors.Is(err, proposal.ErrExtractionFailed):
		outcome = OutcomeExtractionFailed
		logger.Info("no meeting details found")
	case err != nil:
		outcome = OutcomeError
		logger.Error("failed to submit meeting request", "error", err)
	default:
		proposalID = sub.Proposal.ID
		logger.Info("meeting request pending", "proposal_id", proposalID, "notified", sub.Notified)
	}

	if err := w.db.MarkEmailProcessed(id, proposalID, outcome); err != nil {
		logger.Error("failed to mark email processed", "error", err)
	}
	if err := client.MarkRead(ctx, id); err != nil {
		logger.Warn("failed to mark email read", "error", err)
	}
	return outcome == OutcomePending
}
