package chat

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/uche-madu/gamma-rag/internal/config"
	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/sentiment"
	"github.com/uche-madu/gamma-rag/internal/util"
	"github.com/uche-madu/gamma-rag/internal/vector"

	"github.com/google/uuid"
)

// State names the phases a thread moves through while a query is handled.
type State string

const (
	StateAwaitingQuery    State = "awaiting_query"
	StateRetrieving       State = "retrieving"
	StateScoringSentiment State = "scoring_sentiment"
	StateSummarizing      State = "summarizing"
	StateGenerating       State = "generating"
	StateStreaming        State = "streaming"
)

// Retriever fetches grounding chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter vector.Filter) ([]models.ChunkResult, error)
}

// HistoryStore persists per-thread conversation state.
type HistoryStore interface {
	Append(ctx context.Context, m models.Message) error
	Read(ctx context.Context, threadID string) ([]models.Message, error)
	TurnsSinceSummary(ctx context.Context, threadID string) (int, error)
	ReplaceHeadWithSummary(ctx context.Context, threadID, summaryText string, keepRecent int) error
}

// Orchestrator drives one conversation turn: retrieve, score sentiment,
// maybe summarize, generate, stream. Calls on different threads run
// concurrently; calls on the same thread are serialized.
type Orchestrator struct {
	retriever  Retriever
	history    HistoryStore
	chat       providers.CompletionProvider
	summarizer providers.CompletionProvider

	chatProfile    config.CompletionProfile
	summaryProfile config.CompletionProfile
	summarizeEvery int
	keepRecent     int

	log *slog.Logger
	now func() time.Time

	mu          sync.Mutex
	threadLocks map[string]*sync.Mutex
}

type OrchestratorDeps struct {
	Retriever  Retriever
	History    HistoryStore
	Chat       providers.CompletionProvider
	Summarizer providers.CompletionProvider
	Config     config.Config
	Logger     *slog.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	summarizeEvery := deps.Config.SummarizeEvery
	if summarizeEvery <= 0 {
		summarizeEvery = 6
	}
	return &Orchestrator{
		retriever:      deps.Retriever,
		history:        deps.History,
		chat:           deps.Chat,
		summarizer:     deps.Summarizer,
		chatProfile:    deps.Config.Chat,
		summaryProfile: deps.Config.Summary,
		summarizeEvery: summarizeEvery,
		keepRecent:     deps.Config.SummaryKeepRecent,
		log:            log,
		now:            time.Now,
		threadLocks:    make(map[string]*sync.Mutex),
	}
}

// HandleQuery runs one conversation turn, forwarding completion tokens to
// onToken as they arrive. The assistant message is appended to history only
// after the stream finished cleanly; any generation failure leaves the
// thread exactly as it was, so retrying the same query is safe.
func (o *Orchestrator) HandleQuery(ctx context.Context, threadID, query string, onToken func(token string) error) (string, error) {
	if query == "" {
		return "", util.ErrEmptyQuery
	}
	lock := o.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	o.transition(threadID, StateRetrieving)
	chunks, err := o.retriever.Retrieve(ctx, query, vector.Filter{StockSymbol: detectSymbol(query)})
	if err != nil {
		return "", fmt.Errorf("%w: retrieve grounding: %v", util.ErrGenerationFailure, err)
	}
	if len(chunks) == 0 {
		o.log.Info("no grounding found, answering without context", "thread", threadID)
	}

	o.transition(threadID, StateScoringSentiment)
	score := sentiment.Analyze(query)

	turns, err := o.history.TurnsSinceSummary(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("read turn counter: %w", err)
	}
	if turns >= o.summarizeEvery {
		o.transition(threadID, StateSummarizing)
		if err := o.summarize(ctx, threadID); err != nil {
			// History is intact, the counter did not reset; retried on the
			// next turn.
			o.log.Warn("history summarization failed", "thread", threadID, "class", providers.ClassifyError(err), "err", err)
		}
	}

	history, err := o.history.Read(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("read thread history: %w", err)
	}

	o.transition(threadID, StateGenerating)
	req := providers.CompletionRequest{
		Model:       o.chatProfile.Model,
		Messages:    buildMessages(o.now(), query, score, chunks, history),
		Temperature: o.chatProfile.Temperature,
		MaxTokens:   o.chatProfile.MaxTokens,
	}
	o.transition(threadID, StateStreaming)
	text, info, err := o.chat.Stream(ctx, req, onToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrGenerationFailure, err)
	}

	// The full turn commits only after a clean stream.
	userMsg := models.Message{MessageID: uuid.NewString(), ThreadID: threadID, Role: models.RoleUser, Text: query}
	if err := o.history.Append(ctx, userMsg); err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}
	assistantMsg := models.Message{MessageID: uuid.NewString(), ThreadID: threadID, Role: models.RoleAssistant, Text: text}
	if err := o.history.Append(ctx, assistantMsg); err != nil {
		return "", fmt.Errorf("append assistant message: %w", err)
	}

	o.transition(threadID, StateAwaitingQuery)
	o.log.Info("turn complete", "thread", threadID, "provider", info.Name, "model", info.Model, "grounding", len(chunks), "sentiment", score.Label)
	return text, nil
}

func (o *Orchestrator) summarize(ctx context.Context, threadID string) error {
	history, err := o.history.Read(ctx, threadID)
	if err != nil {
		return fmt.Errorf("read history for summary: %w", err)
	}
	if len(history) == 0 {
		return nil
	}
	req := providers.CompletionRequest{
		Model:       o.summaryProfile.Model,
		Messages:    buildSummarizeMessages(history),
		Temperature: o.summaryProfile.Temperature,
		MaxTokens:   o.summaryProfile.MaxTokens,
	}
	summary, _, err := o.summarizer.Stream(ctx, req, nil)
	if err != nil {
		return fmt.Errorf("summarize history: %w", err)
	}
	if err := o.history.ReplaceHeadWithSummary(ctx, threadID, summary, o.keepRecent); err != nil {
		return fmt.Errorf("replace history head: %w", err)
	}
	return nil
}

func (o *Orchestrator) threadLock(threadID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		o.threadLocks[threadID] = lock
	}
	return lock
}

func (o *Orchestrator) transition(threadID string, state State) {
	o.log.Debug("state transition", "thread", threadID, "state", string(state))
}

var symbolPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// Tokens that look like tickers but are not.
var symbolStoplist = map[string]struct{}{
	"CEO": {}, "CFO": {}, "IPO": {}, "ETF": {}, "EPS": {}, "USD": {},
	"USA": {}, "AI": {}, "PE": {}, "YOY": {}, "GAAP": {},
}

// detectSymbol pulls the first ticker-looking token out of the query so
// retrieval can restrict to that stock. No match means no filter.
func detectSymbol(query string) string {
	for _, tok := range symbolPattern.FindAllString(query, -1) {
		if _, skip := symbolStoplist[tok]; !skip {
			return tok
		}
	}
	return ""
}
