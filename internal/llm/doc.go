// Package llm is the uniform gateway over heterogeneous LLM providers.
//
// A static provider table maps each supported provider to its endpoint
// shape, default model, and base URL; adding a provider is one table
// row. The Gateway applies per-request timeouts and retries transient
// failures with exponential backoff before surfacing a ProviderError.
//
// Response interpretation is tolerant by design: extraction tries an
// ordered list of strategies (fenced code block, then bare JSON) and
// ends in ErrParseFailure, which callers absorb into a conservative
// verdict rather than letting it escape into aggregation.
//
// Network I/O happens only behind the Transport capability. The
// default transports use the Anthropic and OpenAI SDKs; everything
// OpenAI-compatible (OpenAI, Zhipu, MiniMax, Qwen, DeepSeek) shares
// one transport and differs only by table entry.
package llm
