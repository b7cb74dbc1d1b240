package indexer

import (
	"strings"
	"testing"
)

func TestChunk_OverlappingWindows(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100) // 1000 chars

	chunks := Chunk(text, 400, 100)

	want := []string{text[0:400], text[300:700], text[600:1000]}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d mismatch: got %q..., want %q...", i, chunks[i][:10], want[i][:10])
		}
	}
}

func TestChunk_LastChunkEndsAtTextEnd(t *testing.T) {
	text := strings.Repeat("x", 950)

	chunks := Chunk(text, 400, 100)

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("last chunk does not end at text end")
	}
	if len(chunks[0]) != 400 {
		t.Errorf("first chunk length = %d, want 400", len(chunks[0]))
	}
}

func TestChunk_SkipsWhitespaceOnlyChunks(t *testing.T) {
	text := "abc" + strings.Repeat(" ", 10) + "def"

	chunks := Chunk(text, 4, 0)

	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("whitespace-only chunk emitted: %q", c)
		}
	}
}

func TestChunk_NonPositiveSizeReturnsWholeText(t *testing.T) {
	text := "some document text"

	for _, size := range []int{0, -5} {
		chunks := Chunk(text, size, 10)
		if len(chunks) != 1 || chunks[0] != text {
			t.Errorf("size=%d: got %v, want [%q]", size, chunks, text)
		}
	}
}

func TestChunk_WhitespaceOnlyTextReturnsWholeText(t *testing.T) {
	text := "   \n\t  "

	chunks := Chunk(text, 4, 1)

	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("got %v, want the original text as single chunk", chunks)
	}
}

func TestChunk_OverlapGreaterOrEqualSizeStillAdvances(t *testing.T) {
	text := strings.Repeat("a", 20)

	chunks := Chunk(text, 5, 5)

	// step clamps to 1; must terminate and cover the text
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	if last := chunks[len(chunks)-1]; !strings.HasSuffix(text, last) {
		t.Errorf("last chunk does not reach text end")
	}
}
