package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ProviderConfig {
	return ProviderConfig{Provider: ProviderOpenAI, APIKey: "test-key"}
}

func quickRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestProviderTable(t *testing.T) {
	for _, p := range Providers() {
		cfg := ProviderConfig{Provider: p}
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.ResolvedModel(), "provider %s has no default model", p)
	}

	assert.Error(t, ProviderConfig{Provider: "petstore"}.Validate())
}

func TestProviderConfigOverrides(t *testing.T) {
	cfg := ProviderConfig{Provider: ProviderDeepSeek}
	assert.Equal(t, "deepseek-chat", cfg.ResolvedModel())
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.ResolvedBaseURL())

	cfg.Model = "deepseek-reasoner"
	cfg.BaseURL = "http://localhost:8080/v1"
	assert.Equal(t, "deepseek-reasoner", cfg.ResolvedModel())
	assert.Equal(t, "http://localhost:8080/v1", cfg.ResolvedBaseURL())
}

func TestGatewayComplete(t *testing.T) {
	transport := TransportFunc(func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
		assert.Equal(t, "review this", prompt.User)
		return "low risk", nil
	})
	g, err := NewGateway(transport, testConfig())
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), Prompt{User: "review this"})
	require.NoError(t, err)
	assert.Equal(t, "low risk", text)
}

func TestGatewayRetriesTransientErrors(t *testing.T) {
	calls := 0
	transport := TransportFunc(func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
		calls++
		if calls < 3 {
			return "", &ProviderError{Provider: cfg.Provider, Status: 429, Retryable: true}
		}
		return "ok", nil
	})
	g, err := NewGateway(transport, testConfig(), WithRetryConfig(quickRetry()))
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), Prompt{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, calls)
}

func TestGatewayDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	transport := TransportFunc(func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
		calls++
		return "", &ProviderError{Provider: cfg.Provider, Status: 401}
	})
	g, err := NewGateway(transport, testConfig(), WithRetryConfig(quickRetry()))
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), Prompt{User: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "auth errors must not be retried")

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
}

func TestGatewayExhaustsRetries(t *testing.T) {
	calls := 0
	transport := TransportFunc(func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
		calls++
		return "", &ProviderError{Provider: cfg.Provider, Status: 503, Retryable: true}
	})
	g, err := NewGateway(transport, testConfig(), WithRetryConfig(quickRetry()))
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), Prompt{User: "x"})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial call plus two retries")
}

func TestGatewayHonorsContextCancellation(t *testing.T) {
	transport := TransportFunc(func(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
		return "", &ProviderError{Provider: cfg.Provider, Status: 429, Retryable: true}
	})
	g, err := NewGateway(transport, testConfig(),
		WithRetryConfig(RetryConfig{MaxRetries: 5, BaseBackoff: time.Hour, MaxBackoff: time.Hour}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Complete(ctx, Prompt{User: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractVerdict_FencedBlock(t *testing.T) {
	text := "Here is my assessment:\n```json\n" +
		`{"risk_level": "medium", "issues": [{"line_number": 42, "risk_level": "medium", "description": "unchecked error", "suggestion": "handle it"}], "summary": "one issue"}` +
		"\n```\nLet me know if you need more."

	v, err := ExtractVerdict(text)
	require.NoError(t, err)
	assert.Equal(t, "medium", v.RiskLevel)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, 42, v.Issues[0].LineNumber)
	assert.Equal(t, "one issue", v.Summary)
}

func TestExtractVerdict_UntaggedFence(t *testing.T) {
	text := "```\n{\"risk_level\": \"low\", \"issues\": [], \"summary\": \"clean\"}\n```"
	v, err := ExtractVerdict(text)
	require.NoError(t, err)
	assert.Equal(t, "low", v.RiskLevel)
}

func TestExtractVerdict_BareObject(t *testing.T) {
	text := `  {"risk_level": "high", "issues": [], "summary": "dangerous"}  `
	v, err := ExtractVerdict(text)
	require.NoError(t, err)
	assert.Equal(t, "high", v.RiskLevel)
}

func TestExtractVerdict_ParseFailure(t *testing.T) {
	for _, text := range []string{
		"This change looks fine to me!",
		"```json\nnot json at all\n```",
		"",
	} {
		_, err := ExtractVerdict(text)
		assert.ErrorIs(t, err, ErrParseFailure, "input: %q", text)
	}
}

func TestExtractVerdict_FenceTakesPriority(t *testing.T) {
	// Prose around a fenced block must not defeat extraction.
	text := "{broken prefix\n```json\n{\"risk_level\": \"low\", \"issues\": [], \"summary\": \"s\"}\n```"
	v, err := ExtractVerdict(text)
	require.NoError(t, err)
	assert.Equal(t, "low", v.RiskLevel)
}

func TestExtractBatch(t *testing.T) {
	wrapped := `{"files": [{"file_path": "a.go", "risk_level": "low", "note": "ok"}, {"file_path": "b.go", "risk_level": "medium", "note": "check"}]}`
	items, err := ExtractBatch(wrapped)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b.go", items[1].FilePath)

	bare := `[{"file_path": "c.go", "risk_level": "low", "note": ""}]`
	items, err = ExtractBatch(bare)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = ExtractBatch("nope")
	assert.ErrorIs(t, err, ErrParseFailure)
}
