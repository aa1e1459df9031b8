package dispatch

import (
	"context"
	"fmt"
	"strings"
)

const (
	agendaFallback = "Meeting agenda could not be generated. Please prepare manually."
	jokeFallback   = "Here's a classic computer joke: Why do programmers prefer dark mode? Because light attracts bugs!"
	defaultTopic   = "computer"
)

const agendaPrompt = `Based on the following context:
%s

Generate a professional meeting agenda for a meeting about %s.
Include:
1. Meeting objectives
2. Key discussion points
3. Expected outcomes
4. Action items
`

const jokePrompt = `Generate a funny joke about %s.
The joke should be clean, professional, and suitable for a work environment.
Return only the joke text, no additional formatting or explanation.`

// GenerateAgenda asks the generation service for an agenda, using past
// meetings on the same topic or with the same people as context. It never
// fails: any error yields a fixed placeholder.
func (d *Dispatcher) GenerateAgenda(ctx context.Context, topic string, participants []string) string {
	if d.generator == nil {
		return agendaFallback
	}

	var meetingContext string
	if d.contextProvider != nil {
		c, err := d.contextProvider.GetContext(ctx, topic, participants, d.historyLength)
		if err != nil {
			d.logger.Warn("failed to load meeting context", "topic", topic, "error", err)
		} else {
			meetingContext = c
		}
	}

	agenda, err := d.generator.Generate(ctx, fmt.Sprintf(agendaPrompt, meetingContext, topic))
	if err != nil || strings.TrimSpace(agenda) == "" {
		d.logger.Warn("agenda generation failed", "topic", topic, "error", err)
		return agendaFallback
	}
	return strings.TrimSpace(agenda)
}

// GenerateJoke returns a work-safe joke about topic, or a stock joke on failure.
func (d *Dispatcher) GenerateJoke(ctx context.Context, topic string) string {
	if topic == "" {
		topic = defaultTopic
	}
	if d.generator == nil {
		return jokeFallback
	}

	joke, err := d.generator.Generate(ctx, fmt.Sprintf(jokePrompt, topic))
	if err != nil || strings.TrimSpace(joke) == "" {
		d.logger.Warn("joke generation failed", "topic", topic, "error", err)
		return jokeFallback
	}
	return strings.TrimSpace(joke)
}
