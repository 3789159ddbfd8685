package pipeline

import "strings"

// chunkText splits text into overlapping chunks so a mention sitting on
// a chunk boundary is still seen whole by at least one chunk. When a
// split would land mid-sentence it backs off to the last sentence or
// paragraph boundary within the final 200 bytes of the chunk.
func chunkText(text string, maxChunkSize, overlap int) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + maxChunkSize

		if end < len(text) {
			searchStart := end - 200
			if searchStart < start {
				searchStart = start
			}
			if boundary := lastBoundary(text, searchStart, end); boundary > start {
				end = boundary + 1
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}

		// Step back by the overlap, but always make forward progress.
		if next := end - overlap; next > start {
			start = next
		} else {
			start = end
		}
	}

	return chunks
}

// lastBoundary returns the index of the last sentence or paragraph
// boundary in text[from:to], or -1 when the window contains none.
func lastBoundary(text string, from, to int) int {
	window := text[from:to]
	best := -1
	for _, sep := range []string{". ", "! ", "? ", "\n\n"} {
		if i := strings.LastIndex(window, sep); i >= 0 && from+i > best {
			best = from + i
		}
	}
	return best
}
