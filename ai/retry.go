// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// MaxBackoff caps the delay between two attempts.
const MaxBackoff = 30 * time.Second

// RetryWithBackoff runs operation up to maxAttempts times, sleeping
// baseDelay, 2*baseDelay, 4*baseDelay and so on (capped at MaxBackoff)
// between attempts. Context errors are never retried. The last error is
// returned when every attempt fails.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	return retry(ctx, slog.Default(), operation, maxAttempts, baseDelay)
}

func retry(ctx context.Context, logger *slog.Logger, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = operation(); err == nil {
			if attempt > 1 {
				logger.Debug("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt == maxAttempts {
			return err
		}

		delay := backoff(baseDelay, attempt)
		logger.Warn("attempt failed, retrying", "attempt", attempt, "max_attempts", maxAttempts, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff returns the delay after the given 1-based attempt.
func backoff(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt && delay < MaxBackoff; i++ {
		delay *= 2
	}
	return min(delay, MaxBackoff)
}

type retryGenerator struct {
	next        Generator
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// WithRetry wraps next so failed calls are retried with exponential backoff.
// A maxAttempts of 1 returns next unchanged.
func WithRetry(next Generator, maxAttempts int, baseDelay time.Duration) (Generator, error) {
	if next == nil {
		return nil, ErrGeneratorRequired
	}
	if maxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if maxAttempts == 1 {
		return next, nil
	}
	return &retryGenerator{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      slog.Default().With("component", "retry", "provider", next.Name()),
	}, nil
}

func (g *retryGenerator) Generate(ctx context.Context, systemPrompt, userMessage, extra string) (string, error) {
	var reply string
	err := retry(ctx, g.logger, func() error {
		var err error
		reply, err = g.next.Generate(ctx, systemPrompt, userMessage, extra)
		return err
	}, g.maxAttempts, g.baseDelay)
	return reply, err
}

func (g *retryGenerator) Name() string {
	return g.next.Name()
}
