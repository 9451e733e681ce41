package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// WithRateLimit wraps next so that at most rpm calls start per minute.
// Calls block until the limiter admits them or ctx is done. An rpm of zero
// returns next unchanged.
func WithRateLimit(next Generator, rpm int) (Generator, error) {
	if next == nil {
		return nil, ErrGeneratorRequired
	}
	if rpm <= 0 {
		return next, nil
	}
	return &rateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}, nil
}

func (g *rateLimitedGenerator) Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.next.Generate(ctx, systemPrompt, userMessage, extra)
}

func (g *rateLimitedGenerator) Name() string {
	return g.next.Name()
}
