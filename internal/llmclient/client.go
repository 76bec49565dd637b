// Package llmclient is the multi-provider LLM connector every Strategy
// consumes. It is an external collaborator: strategies only
// see Chat; everything about provider selection, quotas, and fallback is
// hidden behind it, the same "probe an external dependency, degrade
// gracefully if it's unavailable, never crash the process" shape this
// codebase uses for optional Postgres persistence.
package llmclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAllProvidersExhausted is returned when every configured provider has
// hit its daily quota or errored.
var ErrAllProvidersExhausted = errors.New("llmclient: all providers exhausted")

// Message is a single chat turn.
type Message struct {
	Role string
	Content string
}

// Options tunes a single Chat call.
type Options struct {
	Temperature float64
	MaxTokens int
}

// Response is a single provider reply.
type Response struct {
	Content string
	Provider string
}

// Client is the narrow contract strategies depend on.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts Options) (Response, error)
}

// backend is one named provider with a simple daily quota.
type backend struct {
	name string
	apiKey string
	dailyQuota int
	used int
	resetAt time.Time
	call func(ctx context.Context, apiKey string, messages []Message, opts Options) (string, error)
}

// RoundRobin cycles through configured providers, falling through to the
// next on error or quota exhaustion.
type RoundRobin struct {
	mu sync.Mutex
	backends []*backend
	next int
}

// NewRoundRobin builds a provider cycle from whichever API keys are
// non-empty. callFn is the actual HTTP transport, injected so tests and
// offline runs can supply a stub; a provider with no key configured is
// skipped entirely rather than included with an empty credential.
func NewRoundRobin(providers map[string]string, dailyQuota int, callFn func(ctx context.Context, provider, apiKey string, messages []Message, opts Options) (string, error)) *RoundRobin {
	rr := &RoundRobin{}
	for name, key := range providers {
		if key == "" {
			continue
		}
		name, key := name, key
		rr.backends = append(rr.backends, &backend{
			name: name,
			apiKey: key,
			dailyQuota: dailyQuota,
			resetAt: time.Now().Add(24 * time.Hour),
			call: func(ctx context.Context, apiKey string, messages []Message, opts Options) (string, error) {
				if callFn == nil {
					return "", errors.New("llmclient: no transport configured")
				}
				return callFn(ctx, name, apiKey, messages, opts)
			},
		})
	}
	return rr
}

// Chat tries each backend in round-robin order starting from the one after
// the last successful one, skipping any that are quota-exhausted, and returns
// ErrAllProvidersExhausted if none can serve the request.
func (r *RoundRobin) Chat(ctx context.Context, messages []Message, opts Options) (Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.backends) == 0 {
		return Response{}, ErrAllProvidersExhausted
	}

	n := len(r.backends)
	for i := 0; i < n; i++ {
		idx := (r.next + i) % n
		b := r.backends[idx]

		if time.Now().After(b.resetAt) {
			b.used = 0
			b.resetAt = time.Now().Add(24 * time.Hour)
		}
		if b.used >= b.dailyQuota {
			continue
		}

		content, err := b.call(ctx, b.apiKey, messages, opts)
		if err != nil {
			continue
		}
		b.used++
		r.next = (idx + 1) % n
		return Response{Content: content, Provider: b.name}, nil
	}
	return Response{}, ErrAllProvidersExhausted
}

// NoopClient always fails Chat; used when no provider key is configured so
// Strategies fall straight through to their guardrail-only default behavior
// (CLI surface: "force simulation mode when none is set").
type NoopClient struct{}

func (NoopClient) Chat(ctx context.Context, messages []Message, opts Options) (Response, error) {
	return Response{}, ErrAllProvidersExhausted
}
