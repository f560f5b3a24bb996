package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/uche-madu/gamma-rag/internal/models"

	"github.com/stretchr/testify/require"
)

func TestMemoryHistoryCountsUserTurnsOnly(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, models.Message{ThreadID: "t1", Role: models.RoleUser, Text: "q"}))
	require.NoError(t, h.Append(ctx, models.Message{ThreadID: "t1", Role: models.RoleAssistant, Text: "a"}))

	turns, err := h.TurnsSinceSummary(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 1, turns)

	turns, err = h.TurnsSinceSummary(ctx, "unknown-thread")
	require.NoError(t, err)
	require.Zero(t, turns)
}

func TestMemoryHistoryReplaceHeadWithSummary(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, h.Append(ctx, models.Message{ThreadID: "t1", Role: models.RoleUser, Text: fmt.Sprintf("q%d", i)}))
		require.NoError(t, h.Append(ctx, models.Message{ThreadID: "t1", Role: models.RoleAssistant, Text: fmt.Sprintf("a%d", i)}))
	}

	require.NoError(t, h.ReplaceHeadWithSummary(ctx, "t1", "the summary", 4))

	msgs, err := h.Read(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	require.Equal(t, models.RoleSummary, msgs[0].Role)
	require.Equal(t, "the summary", msgs[0].Text)
	require.Equal(t, "q4", msgs[1].Text)
	require.Equal(t, "a5", msgs[4].Text)

	turns, err := h.TurnsSinceSummary(ctx, "t1")
	require.NoError(t, err)
	require.Zero(t, turns)
}

func TestMemoryHistoryReadReturnsCopy(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, models.Message{ThreadID: "t1", Role: models.RoleUser, Text: "original"}))
	msgs, err := h.Read(ctx, "t1")
	require.NoError(t, err)
	msgs[0].Text = "mutated"

	again, err := h.Read(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "original", again[0].Text)
}
