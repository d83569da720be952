package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

// defaultMaxTokens is used when a prompt does not set its own budget.
const defaultMaxTokens = 4096

// NewDefaultTransport returns the SDK-backed transport for the
// configured provider. Anthropic speaks its own messages API; every
// other supported provider is OpenAI-compatible and differs only in
// base URL and default model.
func NewDefaultTransport(cfg ProviderConfig) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch providerTable[cfg.Provider].shape {
	case shapeAnthropic:
		return anthropicTransport{}, nil
	default:
		return openaiTransport{}, nil
	}
}

// anthropicTransport calls the Anthropic messages API.
type anthropicTransport struct{}

func (anthropicTransport) SendPrompt(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0), // the gateway owns retries
	}
	if base := cfg.ResolvedBaseURL(); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(base))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.ResolvedModel()),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}
	if cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(cfg.Temperature)
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(cfg.Provider, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func classifyAnthropicError(provider Provider, err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &ProviderError{
			Provider:  provider,
			Status:    apierr.StatusCode,
			Retryable: retryableStatus(apierr.StatusCode),
			Err:       err,
		}
	}
	// Network-level failures without a status are worth one more try.
	return &ProviderError{Provider: provider, Retryable: true, Err: err}
}

// openaiTransport calls any OpenAI-compatible chat-completions API.
type openaiTransport struct{}

func (openaiTransport) SendPrompt(ctx context.Context, cfg ProviderConfig, prompt Prompt) (string, error) {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithMaxRetries(0),
	}
	if base := cfg.ResolvedBaseURL(); base != "" {
		opts = append(opts, openaioption.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)

	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.ResolvedModel()),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if cfg.Temperature > 0 {
		params.Temperature = openai.Float(cfg.Temperature)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(cfg.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: cfg.Provider,
			Err:      fmt.Errorf("response contained no choices"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(provider Provider, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &ProviderError{
			Provider:  provider,
			Status:    apierr.StatusCode,
			Retryable: retryableStatus(apierr.StatusCode),
			Err:       err,
		}
	}
	return &ProviderError{Provider: provider, Retryable: true, Err: err}
}
