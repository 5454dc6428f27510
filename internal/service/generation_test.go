package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/internal/metrics"
)

const validOutput = `{"enhancedDescription": "A sunlit two-bedroom retreat."}`

func fastClient(b Backend, opts ...GenerationOption) *GenerationClient {
	base := []GenerationOption{
		WithMaxRetries(2),
		WithInitialDelay(time.Millisecond),
		WithBackoffFactor(1),
	}
	return NewGenerationClient(b, append(base, opts...)...)
}

func TestGenerationClient_Generate(t *testing.T) {
	backend := newFakeBackend(reply{out: validOutput})
	client := fastClient(backend)

	obj, err := client.Generate(context.Background(), "prompt", EnhancementSchema)
	require.NoError(t, err)
	assert.Equal(t, "A sunlit two-bedroom retreat.", obj["enhancedDescription"])
	assert.Equal(t, 1, backend.Calls())
	assert.Equal(t, "prompt", backend.LastPrompt())
}

func TestGenerationClient_ToleratesFencedOutput(t *testing.T) {
	backend := newFakeBackend(reply{out: "```json\n" + validOutput + "\n```"})

	obj, err := fastClient(backend).Generate(context.Background(), "prompt", EnhancementSchema)
	require.NoError(t, err)
	assert.Equal(t, "A sunlit two-bedroom retreat.", obj["enhancedDescription"])
}

func TestGenerationClient_RetriesTransientErrors(t *testing.T) {
	backend := newFakeBackend(
		reply{err: Transient(errors.New("503 service unavailable"))},
		reply{err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
		reply{out: validOutput},
	)

	obj, err := fastClient(backend).Generate(context.Background(), "prompt", EnhancementSchema)
	require.NoError(t, err)
	assert.NotEmpty(t, obj["enhancedDescription"])
	assert.Equal(t, 3, backend.Calls())
}

func TestGenerationClient_StopsAtRetryBound(t *testing.T) {
	backend := newFakeBackend(reply{err: Transient(errors.New("429 rate limited"))})

	_, err := fastClient(backend, WithMaxRetries(3)).Generate(context.Background(), "prompt", EnhancementSchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 4, backend.Calls())
}

func TestGenerationClient_DoesNotRetryPermanentErrors(t *testing.T) {
	backend := newFakeBackend(reply{err: errors.New("401 unauthorized")})

	_, err := fastClient(backend).Generate(context.Background(), "prompt", EnhancementSchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, backend.Calls())
}

func TestGenerationClient_SchemaMismatchIsNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "missing field", output: `{"description": "text"}`},
		{name: "blank field", output: `{"enhancedDescription": "   "}`},
		{name: "wrong type", output: `{"enhancedDescription": 42}`},
		{name: "not json", output: "Here is a lovely description without any JSON."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(reply{out: tt.output})

			_, err := fastClient(backend).Generate(context.Background(), "prompt", EnhancementSchema)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
			assert.NotErrorIs(t, err, ErrGeneration)
			assert.Equal(t, 1, backend.Calls())
		})
	}
}

func TestGenerationClient_ExtraFieldsAllowed(t *testing.T) {
	backend := newFakeBackend(reply{out: `{"enhancedDescription": "Nice.", "tone": "warm"}`})

	obj, err := fastClient(backend).Generate(context.Background(), "prompt", EnhancementSchema)
	require.NoError(t, err)
	assert.Equal(t, "Nice.", obj["enhancedDescription"])
}

func TestGenerationClient_ContextCancelled(t *testing.T) {
	backend := newFakeBackend(reply{out: validOutput})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient(backend).Generate(ctx, "prompt", EnhancementSchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.Calls())
}

func TestGenerationClient_ConcurrencyCap(t *testing.T) {
	backend := newFakeBackend(reply{out: validOutput})
	backend.gate = make(chan struct{})
	client := fastClient(backend, WithMaxConcurrency(2))

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Generate(context.Background(), "prompt", EnhancementSchema)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return backend.inFlight.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), backend.inFlight.Load())

	close(backend.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(2), backend.maxActive.Load())
	assert.Equal(t, 6, backend.Calls())
}

func TestGenerationClient_RecordsAttempts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	backend := newFakeBackend(
		reply{err: Transient(errors.New("502 bad gateway"))},
		reply{out: validOutput},
	)

	_, err := fastClient(backend, WithMetrics(rec)).Generate(context.Background(), "prompt", EnhancementSchema)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "rentals_generation_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
