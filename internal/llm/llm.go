// Package llm talks to the text-generation service behind intent
// extraction, agenda writing and joke generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty response from generation service")

// Generator sends one prompt and returns the raw completion text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// WithTimeout bounds every Generate call. An expired deadline surfaces as an
// error, which callers treat the same as the service being down.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return g
	}
	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		text, err := g.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("generation timed out after %s: %w", timeout, err)
			}
			return "", err
		}
		return text, nil
	})
}
