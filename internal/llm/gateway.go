package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
)

// Prompt is one completion request, provider-agnostic.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Transport is the capability that actually reaches a provider:
// send a prompt, return the raw response text. The review core never
// performs network I/O except through this interface, so tests inject
// a fake and the default transports (see transports.go) stay at the
// edge.
type Transport interface {
	SendPrompt(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error)

func (f TransportFunc) SendPrompt(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
	return f(ctx, cfg, prompt)
}

// DefaultRequestTimeout bounds a single provider call, including all
// retries of it by the underlying HTTP client.
const DefaultRequestTimeout = 120 * time.Second

// Gateway is the uniform request path over heterogeneous providers:
// it applies per-request timeouts and retries with backoff, and leaves
// response interpretation to the extraction layer.
type Gateway struct {
	transport Transport
	cfg       ProviderConfig
	retry     RetryConfig
	timeout   time.Duration
	cache     CompletionCache
}

// CompletionCache stores raw responses keyed by the full request, so
// reruns over an unchanged diff cost no provider calls.
type CompletionCache interface {
	Get(key string) (string, bool)
	Put(key, response string) error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCompletionCache enables response caching.
func WithCompletionCache(c CompletionCache) Option {
	return func(g *Gateway) { g.cache = c }
}

// WithRetryConfig overrides the default backoff policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(g *Gateway) { g.retry = rc }
}

// WithRequestTimeout overrides the per-call timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// NewGateway builds a gateway for one provider configuration. The
// transport is supplied by the caller; use NewDefaultTransport for the
// built-in SDK-backed one.
func NewGateway(transport Transport, cfg ProviderConfig, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Gateway{
		transport: transport,
		cfg:       cfg,
		retry:     DefaultRetryConfig(),
		timeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Provider returns the provider this gateway is bound to.
func (g *Gateway) Provider() Provider { return g.cfg.Provider }

// Complete sends a prompt and returns the raw response text. Transport
// failures are retried with exponential backoff up to the attempt cap;
// what remains surfaces as a ProviderError for the caller to demote.
func (g *Gateway) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	key := fmt.Sprintf("%s:%s:%s:%s", g.cfg.Provider, g.cfg.ResolvedModel(), prompt.System, prompt.User)
	if g.cache != nil {
		if text, ok := g.cache.Get(key); ok {
			clog.FromContext(ctx).With("provider", g.cfg.Provider).Debug("Completion served from cache")
			return text, nil
		}
	}

	start := time.Now()
	text, err := retryWithBackoff(ctx, g.retry, "complete", func() (string, error) {
		return g.transport.SendPrompt(ctx, g.cfg, prompt)
	})
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		if err := g.cache.Put(key, text); err != nil {
			clog.FromContext(ctx).With("error", err.Error()).Warn("Failed to store completion in cache")
		}
	}

	clog.FromContext(ctx).With("provider", g.cfg.Provider).
		With("model", g.cfg.ResolvedModel()).
		With("elapsed", time.Since(start)).
		With("response_bytes", len(text)).
		Debug("Completion finished")
	return text, nil
}
