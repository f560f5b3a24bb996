package util

import "errors"

var (
	// ErrEmptyQuery is returned when a conversation turn carries no text.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrGenerationFailure is returned when a completion call fails or its
	// stream is interrupted. Thread history is never mutated in that case,
	// so the caller can retry safely.
	ErrGenerationFailure = errors.New("completion generation failed")

	// ErrSyncInProgress reports that an embedding sync trigger arrived while
	// a run was already executing. The trigger is a no-op, not a failure.
	ErrSyncInProgress = errors.New("embedding sync already in progress")

	// ErrPartialIngestion reports that one or more chunks of an article
	// failed to embed; the article stays unflagged and is retried next run.
	ErrPartialIngestion = errors.New("partial article ingestion")
)
