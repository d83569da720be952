package llm

import "fmt"

// Provider identifies a supported LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderZhipu     Provider = "zhipu"
	ProviderMiniMax   Provider = "minimax"
	ProviderQwen      Provider = "qwen"
	ProviderDeepSeek  Provider = "deepseek"
)

// endpointShape selects how requests are built and responses read.
// Most providers speak the OpenAI chat-completions dialect; Anthropic
// has its own messages API.
type endpointShape int

const (
	shapeOpenAI endpointShape = iota
	shapeAnthropic
)

// providerInfo is the static table entry for one provider: endpoint
// shape, default model, and default base URL. Adding a provider means
// adding a row here; no other component changes.
type providerInfo struct {
	shape        endpointShape
	defaultModel string
	baseURL      string
}

var providerTable = map[Provider]providerInfo{
	ProviderOpenAI:    {shapeOpenAI, "gpt-4o", ""},
	ProviderAnthropic: {shapeAnthropic, "claude-sonnet-4-20250514", ""},
	ProviderZhipu:     {shapeOpenAI, "glm-4-flash", "https://open.bigmodel.cn/api/paas/v4"},
	ProviderMiniMax:   {shapeOpenAI, "abab6.5s-chat", "https://api.minimax.chat/v1"},
	ProviderQwen:      {shapeOpenAI, "qwen-plus", "https://dashscope.aliyuncs.com/compatible-mode/v1"},
	ProviderDeepSeek:  {shapeOpenAI, "deepseek-chat", "https://api.deepseek.com/v1"},
}

// Providers returns the supported provider identifiers.
func Providers() []Provider {
	return []Provider{
		ProviderOpenAI, ProviderAnthropic, ProviderZhipu,
		ProviderMiniMax, ProviderQwen, ProviderDeepSeek,
	}
}

// ProviderConfig is the fully resolved configuration for one provider,
// as consumed by transports. Model and BaseURL fall back to the
// provider table when empty.
type ProviderConfig struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// Validate checks the provider is known.
func (c ProviderConfig) Validate() error {
	if _, ok := providerTable[c.Provider]; !ok {
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	return nil
}

// ResolvedModel returns the configured model or the provider default.
func (c ProviderConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return providerTable[c.Provider].defaultModel
}

// ResolvedBaseURL returns the configured base URL or the provider
// default; empty means the SDK's own default endpoint.
func (c ProviderConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return providerTable[c.Provider].baseURL
}

// DefaultModel returns the default model for a provider.
func DefaultModel(p Provider) string {
	return providerTable[p].defaultModel
}
