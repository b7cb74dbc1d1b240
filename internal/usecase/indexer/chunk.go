package indexer

import "strings"

// Chunk splits text into overlapping fixed-size fragments.
//
// The window advances by max(1, size-overlap), every emitted chunk except the
// last is exactly size characters, and the last chunk always ends at the end
// of the text, so no character range is ever skipped. Chunks that are entirely
// whitespace are not emitted. size <= 0 is a documented escape hatch that
// returns the whole text as a single chunk.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		return []string{text}
	}

	n := len(text)
	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		if c := text[start:end]; strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
		if end == n {
			break
		}
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
