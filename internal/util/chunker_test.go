package util

import "testing"

func TestChunkText(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := ChunkText(text, 10, 2)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	if chunks[0] != "abcdefghij" {
		t.Fatalf("unexpected first chunk: %s", chunks[0])
	}
}

func TestChunkTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := "abcdefghijklmnopqrst"
	chunks := ChunkText(text, 10, 4)
	if chunks[1][:4] != chunks[0][6:] {
		t.Fatalf("expected second chunk to repeat tail of first, got %q after %q", chunks[1], chunks[0])
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if got := ChunkText("   ", 10, 2); len(got) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %v", got)
	}
}
