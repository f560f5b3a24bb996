package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type EmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Dimension int      `json:"dimension"`
}

type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// EmbeddingProvider converts text into fixed-length vectors via a remote
// call. Individual calls may fail; callers decide retry policy.
type EmbeddingProvider interface {
	Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error)
}

// CompletionProvider issues a streamed chat completion. onToken is invoked
// for every token in arrival order; a non-nil return from onToken cancels
// the stream. Stream returns the full concatenated text only when the
// stream completed cleanly.
type CompletionProvider interface {
	Stream(ctx context.Context, req CompletionRequest, onToken func(token string) error) (string, ProviderInfo, error)
}
