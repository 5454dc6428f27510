package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"rentals/internal/metrics"
	"rentals/internal/utils"
)

// Generator turns a prompt into a structured object conforming to schema.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (map[string]any, error)
}

// GenerationClient sends prompts to a Backend and enforces the output schema.
// Transient backend failures are retried with exponential backoff; schema
// violations are not. Concurrent calls are capped by a weighted semaphore.
type GenerationClient struct {
	backend       Backend
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	sem           *semaphore.Weighted
	metrics       *metrics.Recorder
	logger        zerolog.Logger
}

// GenerationOption configures a GenerationClient.
type GenerationOption func(*GenerationClient)

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) GenerationOption {
	return func(c *GenerationClient) { c.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) GenerationOption {
	return func(c *GenerationClient) { c.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) GenerationOption {
	return func(c *GenerationClient) { c.backoffFactor = f }
}

// WithMaxConcurrency caps simultaneous backend calls.
func WithMaxConcurrency(n int) GenerationOption {
	return func(c *GenerationClient) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) GenerationOption {
	return func(c *GenerationClient) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) GenerationOption {
	return func(c *GenerationClient) { c.logger = l }
}

// NewGenerationClient creates a client for backend.
func NewGenerationClient(backend Backend, opts ...GenerationOption) *GenerationClient {
	c := &GenerationClient{
		backend:       backend,
		maxRetries:    2,
		initialDelay:  500 * time.Millisecond,
		backoffFactor: 2.0,
		sem:           semaphore.NewWeighted(8),
		metrics:       metrics.Nop(),
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the wrapped backend.
func (c *GenerationClient) Backend() Backend {
	return c.backend
}

// Generate sends prompt to the backend and returns the decoded object.
// Errors wrap ErrSchemaMismatch when the backend answered with output that
// does not satisfy schema, and ErrGeneration otherwise.
func (c *GenerationClient) Generate(ctx context.Context, prompt string, schema *Schema) (map[string]any, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for backend slot: %w", ErrGeneration, err)
	}
	defer c.sem.Release(1)
	defer c.metrics.Acquired()()

	name := c.backend.Name()
	start := time.Now()
	defer func() { c.metrics.ObserveGeneration(name, time.Since(start)) }()

	var raw string
	err := c.withRetry(ctx, func() error {
		out, err := c.backend.Complete(ctx, prompt, schema)
		if err != nil {
			c.metrics.Attempt(name, "error")
			return err
		}
		c.metrics.Attempt(name, "ok")
		raw = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGeneration, name, err)
	}

	obj, err := utils.ParseModelObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	if err := schema.Validate(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// withRetry executes fn with exponential backoff retry.
func (c *GenerationClient) withRetry(ctx context.Context, fn func() error) error {
	delay := c.initialDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %w)", err, lastErr)
			}
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < c.maxRetries {
			c.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("delay", delay).Msg("generation failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * c.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable reports whether err is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
