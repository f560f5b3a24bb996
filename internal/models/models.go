package models

import "time"

type Article struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	StockSymbol   string    `json:"stock_symbol"`
	Title         string    `json:"title,omitempty"`
	Author        string    `json:"author,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	Content       string    `json:"content,omitempty"`
	Embedded      bool      `json:"embedded"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// Chunk is the unit of embedding and retrieval, derived from one article.
// ChunkID is stable across runs so repeated insertion is idempotent.
type Chunk struct {
	ChunkID       string    `json:"chunk_id"`
	ArticleID     int64     `json:"article_id"`
	URL           string    `json:"url"`
	StockSymbol   string    `json:"stock_symbol"`
	Title         string    `json:"title,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	ChunkIndex    int       `json:"chunk_index"`
	Text          string    `json:"text"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChunkResult is one retrieved chunk with its cosine-derived similarity.
type ChunkResult struct {
	ChunkID       string  `json:"chunk_id"`
	ArticleID     int64   `json:"article_id"`
	URL           string  `json:"url"`
	StockSymbol   string  `json:"stock_symbol"`
	Title         string  `json:"title"`
	PublishedDate string  `json:"published_date,omitempty"`
	Text          string  `json:"text"`
	Similarity    float64 `json:"similarity"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSummary   Role = "summary"
)

// Message is one entry in a conversation thread. Thread history is
// append-only and never reordered.
type Message struct {
	MessageID string    `json:"message_id"`
	ThreadID  string    `json:"thread_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
