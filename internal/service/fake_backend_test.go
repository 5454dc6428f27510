package service

import (
	"context"
	"sync"
	"sync/atomic"
)

type reply struct {
	out string
	err error
}

// fakeBackend answers from a script of replies; the last reply repeats.
type fakeBackend struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	prompts []string

	// gate, when set, blocks every call until it is closed.
	gate      chan struct{}
	inFlight  atomic.Int32
	maxActive atomic.Int32
}

func newFakeBackend(replies ...reply) *fakeBackend {
	return &fakeBackend{replies: replies}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, prompt string, _ *Schema) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxActive.Load()
		if n <= cur || f.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i].out, f.replies[i].err
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
