package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uche-madu/gamma-rag/internal/chat"
	"github.com/uche-madu/gamma-rag/internal/storage"
	"github.com/uche-madu/gamma-rag/internal/util"

	"github.com/google/uuid"
)

// Server is the thin HTTP collaborator in front of the conversation
// engine. Transport stays dumb: it relays tokens in arrival order and
// leaves all conversation state to the orchestrator.
type Server struct {
	orchestrator *chat.Orchestrator
	articles     *storage.ArticleRepo
	sync         func() error
	log          *slog.Logger
}

func NewServer(orchestrator *chat.Orchestrator, articles *storage.ArticleRepo, syncFn func() error, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{orchestrator: orchestrator, articles: articles, sync: syncFn, log: log}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/articles", s.handleArticles)
	mux.HandleFunc("/sync", s.handleSync)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleChat streams response tokens as server-sent events. The thread id
// is caller-supplied; a missing one starts a fresh thread.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		ThreadID string `json:"thread_id"`
		Query    string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeErr(w, http.StatusBadRequest, util.ErrEmptyQuery)
		return
	}
	if strings.TrimSpace(req.ThreadID) == "" {
		req.ThreadID = uuid.NewString()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Thread-ID", req.ThreadID)
	w.WriteHeader(http.StatusOK)

	onToken := func(token string) error {
		b, _ := json.Marshal(map[string]string{"token": token})
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	_, err := s.orchestrator.HandleQuery(r.Context(), req.ThreadID, req.Query, onToken)
	if err != nil {
		// The stream may be half-written; signal failure in-band so the
		// client can retry. History was not touched.
		s.log.Warn("chat turn failed", "thread", req.ThreadID, "err", err)
		msg := "generation failed, please try again"
		if errors.Is(err, util.ErrEmptyQuery) {
			msg = "query cannot be empty"
		}
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", msg)
		flusher.Flush()
		return
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("symbol is required"))
		return
	}
	articles, err := s.articles.ListBySymbol(r.Context(), symbol, 50)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleSync triggers one pipeline run out of band. A run already in
// progress reports as accepted-but-skipped rather than failing.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := s.sync(); err != nil {
		if errors.Is(err, util.ErrSyncInProgress) {
			writeJSON(w, http.StatusAccepted, map[string]any{"status": "skipped", "reason": "sync already running"})
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "completed"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": err.Error(),
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
