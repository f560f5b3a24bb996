package providers

import (
	"fmt"
	"strings"

	"github.com/uche-madu/gamma-rag/internal/config"
)

// Manager resolves configured provider names to concrete clients. The
// completion side is profile-driven: the orchestrator asks for a client by
// profile rather than constructing one per call site.
type Manager struct {
	embed   EmbeddingProvider
	chat    CompletionProvider
	summary CompletionProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	embed, err := buildEmbeddingProvider(cfg.EmbedProvider, cfg.EmbedDim)
	if err != nil {
		return nil, err
	}
	chat, err := buildCompletionProvider(cfg.Chat.Provider, cfg.EmbedDim)
	if err != nil {
		return nil, err
	}
	summary, err := buildCompletionProvider(cfg.Summary.Provider, cfg.EmbedDim)
	if err != nil {
		return nil, err
	}
	return &Manager{embed: embed, chat: chat, summary: summary}, nil
}

func (m *Manager) Embedder() EmbeddingProvider { return m.embed }

// ChatCompleter backs the main generation profile.
func (m *Manager) ChatCompleter() CompletionProvider { return m.chat }

// SummaryCompleter backs the history-summarization profile.
func (m *Manager) SummaryCompleter() CompletionProvider { return m.summary }

func buildEmbeddingProvider(name string, dim int) (EmbeddingProvider, error) {
	parts := strings.SplitN(strings.TrimSpace(name), ":", 2)
	alias := ""
	if len(parts) == 2 {
		alias = parts[1]
	}
	switch strings.ToLower(parts[0]) {
	case "", "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(alias), nil
	case "ollama":
		return NewOllamaEmbeddingProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", name)
	}
}

func buildCompletionProvider(name string, dim int) (CompletionProvider, error) {
	parts := strings.SplitN(strings.TrimSpace(name), ":", 2)
	alias := ""
	if len(parts) == 2 {
		alias = parts[1]
	}
	switch strings.ToLower(parts[0]) {
	case "", "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(alias), nil
	case "groq":
		return NewGroqProvider(alias), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", name)
	}
}
