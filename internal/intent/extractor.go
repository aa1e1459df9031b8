package intent

import (
	"context"
	"log/slog"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/llm"
)

// Extractor asks the generation service to interpret a chat message.
type Extractor struct {
	gen      llm.Generator
	contacts ContactResolver
	now      func() time.Time
	logger   *slog.Logger
}

// NewExtractor creates an extractor. Relative times resolve against the wall
// clock in loc; a nil loc means the local zone.
func NewExtractor(gen llm.Generator, contacts ContactResolver, loc *time.Location, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{
		gen:      gen,
		contacts: contacts,
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   logger.With("component", "intent"),
	}
}

// Extract interprets message in light of the prior turns. A failed service
// call returns a nil Delta with OutcomeUnavailable; an unusable answer falls
// back to keyword detection with OutcomeFallback.
func (e *Extractor) Extract(ctx context.Context, message string, history []Turn, meetingContext string) (*Delta, Outcome) {
	prompt := BuildPrompt(message, history, meetingContext)

	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("generation service unavailable", "error", err)
		return nil, OutcomeUnavailable
	}

	return e.interpret(raw, message)
}

func (e *Extractor) interpret(raw, message string) (*Delta, Outcome) {
	fields, err := ParseResponse(raw)
	if err != nil {
		e.logger.Info("unusable model response, using keywords", "error", err)
		return keywordDelta(message), OutcomeFallback
	}
	return buildDelta(fields, e.contacts, e.now()), OutcomeParsed
}
