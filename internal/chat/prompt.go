package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/sentiment"
)

const systemPrompt = "You are an experienced financial analyst specializing in investment research. " +
	"Your task is to analyze relevant stock market insights based on retrieved data. " +
	"Ensure your response is data-driven, structured, and easy to understand."

const noGroundingMarker = "No current grounding data: no scraped article cleared the similarity floor for this query. " +
	"State that explicitly and do not fabricate figures."

const summarizeInstruction = "Condense the prior conversation into a single short briefing a financial analyst " +
	"could resume from. Keep stock symbols, stated positions and open questions. Reply with the summary only."

// buildMessages assembles the full prompt: system instructions, condensed
// or full history, then one user message carrying date, sentiment, the
// retrieved grounding block and the new query.
func buildMessages(now time.Time, query string, score sentiment.Score, chunks []models.ChunkResult, history []models.Message) []providers.ChatMessage {
	out := make([]providers.ChatMessage, 0, len(history)+2)
	out = append(out, providers.ChatMessage{Role: "system", Content: systemPrompt})

	for _, m := range history {
		switch m.Role {
		case models.RoleSummary:
			out = append(out, providers.ChatMessage{Role: "system", Content: "Conversation so far: " + m.Text})
		case models.RoleAssistant:
			out = append(out, providers.ChatMessage{Role: "assistant", Content: m.Text})
		default:
			out = append(out, providers.ChatMessage{Role: "user", Content: m.Text})
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's date is %s.\n\n", now.Format("January 02, 2006"))
	fmt.Fprintf(&b, "The user's sentiment toward this investment is %s (compound %.2f).\n\n", score.Label, score.Compound)
	b.WriteString("### Retrieved Financial Articles:\n")
	if len(chunks) == 0 {
		b.WriteString(noGroundingMarker)
		b.WriteString("\n")
	} else {
		for i, c := range chunks {
			fmt.Fprintf(&b, "[%d] %s (%s, similarity %.2f) %s\n%s\n\n", i+1, c.Title, c.StockSymbol, c.Similarity, c.URL, c.Text)
		}
	}
	b.WriteString("\nBased on the above, analyze the company's current market position and provide an investment assessment.\n\n")
	b.WriteString("### Response Format:\n")
	b.WriteString("1. **Summary of Key Financial Insights:**\n")
	b.WriteString("2. **Advantages of Investing:**\n")
	b.WriteString("3. **Risks and Disadvantages:**\n")
	b.WriteString("4. **Sentiment-Based Recommendation:**\n\n")
	b.WriteString("### User Query:\n")
	b.WriteString(query)

	return append(out, providers.ChatMessage{Role: "user", Content: b.String()})
}

// buildSummarizeMessages asks the summary profile to condense the history
// that is about to be replaced.
func buildSummarizeMessages(history []models.Message) []providers.ChatMessage {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
	}
	return []providers.ChatMessage{
		{Role: "system", Content: summarizeInstruction},
		{Role: "user", Content: b.String()},
	}
}
