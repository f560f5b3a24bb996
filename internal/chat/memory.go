package chat

import (
	"context"
	"sync"
	"time"

	"github.com/uche-madu/gamma-rag/internal/models"
)

// MemoryHistory is an in-process HistoryStore for sessions that do not
// need durable threads, and for tests.
type MemoryHistory struct {
	mu       sync.Mutex
	messages map[string][]models.Message
	turns    map[string]int
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		messages: make(map[string][]models.Message),
		turns:    make(map[string]int),
	}
}

func (h *MemoryHistory) Append(ctx context.Context, m models.Message) error {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	h.messages[m.ThreadID] = append(h.messages[m.ThreadID], m)
	if m.Role == models.RoleUser {
		h.turns[m.ThreadID]++
	}
	return nil
}

func (h *MemoryHistory) Read(ctx context.Context, threadID string) ([]models.Message, error) {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.messages[threadID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (h *MemoryHistory) TurnsSinceSummary(ctx context.Context, threadID string) (int, error) {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.turns[threadID], nil
}

func (h *MemoryHistory) ReplaceHeadWithSummary(ctx context.Context, threadID, summaryText string, keepRecent int) error {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	if keepRecent < 0 {
		keepRecent = 0
	}
	msgs := h.messages[threadID]
	tail := msgs
	if len(msgs) > keepRecent {
		tail = msgs[len(msgs)-keepRecent:]
	}
	replaced := make([]models.Message, 0, len(tail)+1)
	replaced = append(replaced, models.Message{
		ThreadID:  threadID,
		Role:      models.RoleSummary,
		Text:      summaryText,
		CreatedAt: time.Now(),
	})
	replaced = append(replaced, tail...)
	h.messages[threadID] = replaced
	h.turns[threadID] = 0
	return nil
}
