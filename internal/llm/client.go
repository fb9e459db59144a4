// Package llm wraps the external text-understanding service used to
// classify notification emails and extract order facts from them. The
// service is non-deterministic and frequently returns JSON wrapped in prose
// or markdown fencing; everything in this package is written defensively
// around that.
package llm

import (
	"context"
	"time"
)

// Client is a provider-agnostic chat-completion client. Complete sends a
// fixed system instruction plus the user content and returns the raw reply
// text. Implementations never retry: a timeout or transport failure is
// reported upward and the caller decides how to degrade.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Config holds configuration for oracle clients.
type Config struct {
	Provider    string
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int
	CacheTTL    time.Duration
}
