// Package textchunk splits completion text into DNS TXT compatible
// chunks. A TXT character-string carries at most 255 bytes, and the
// whole UDP answer has a practical payload ceiling, so long responses
// are truncated to a total cap and then sliced into bounded segments.
// All cuts land on UTF-8 code point boundaries.
package textchunk

import "unicode/utf8"

const (
	// DefaultMaxChunkBytes leaves a safety margin under the 255-byte
	// TXT character-string limit.
	DefaultMaxChunkBytes = 250

	// DefaultMaxTotalBytes bounds the reassembled answer to what fits
	// comfortably in a DNS UDP response payload.
	DefaultMaxTotalBytes = 4096
)

// Chunker splits text under the configured size limits. The zero value
// is not useful; construct one with New or NewWithSizes. Chunker holds
// no mutable state and is safe to share across concurrent requests.
type Chunker struct {
	maxChunkBytes int
	maxTotalBytes int
}

// New returns a Chunker with the default chunk and total size limits.
func New() Chunker {
	return Chunker{
		maxChunkBytes: DefaultMaxChunkBytes,
		maxTotalBytes: DefaultMaxTotalBytes,
	}
}

// NewWithSizes returns a Chunker with custom limits. Non-positive
// values fall back to the defaults.
func NewWithSizes(maxChunkBytes, maxTotalBytes int) Chunker {
	if maxChunkBytes <= 0 {
		maxChunkBytes = DefaultMaxChunkBytes
	}
	if maxTotalBytes <= 0 {
		maxTotalBytes = DefaultMaxTotalBytes
	}
	return Chunker{
		maxChunkBytes: maxChunkBytes,
		maxTotalBytes: maxTotalBytes,
	}
}

// Chunk splits text into successive slices of at most maxChunkBytes
// bytes. Text longer than maxTotalBytes is first truncated to the
// nearest code point boundary at or before the cap. A multi-byte rune
// that would straddle a chunk boundary is pushed entirely into the next
// chunk. Empty input yields exactly one empty chunk, preserving the
// invariant that a TXT answer always has at least one character-string.
func (c Chunker) Chunk(text string) []string {
	if text == "" {
		return []string{""}
	}

	if len(text) > c.maxTotalBytes {
		text = text[:boundaryAtOrBefore(text, c.maxTotalBytes)]
	}

	if len(text) <= c.maxChunkBytes {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		n := c.maxChunkBytes
		if n >= len(text) {
			chunks = append(chunks, text)
			break
		}
		split := boundaryAtOrBefore(text, n)
		if split == 0 {
			// maxChunkBytes is smaller than the first rune; emit the
			// whole rune anyway so the loop always makes progress.
			_, split = utf8.DecodeRuneInString(text)
		}
		chunks = append(chunks, text[:split])
		text = text[split:]
	}
	return chunks
}

// Dechunk reassembles chunks in order. For any chunk set produced
// without truncation, Dechunk(Chunk(s)) == s; with truncation it
// returns the truncated prefix, never garbled bytes.
func Dechunk(chunks []string) string {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	buf := make([]byte, 0, total)
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return string(buf)
}

// boundaryAtOrBefore returns the largest byte offset <= max that is a
// UTF-8 code point boundary in s. Built-in slicing at an arbitrary byte
// offset would happily cut a rune in half, so the boundary is searched
// explicitly by walking backward over continuation bytes.
func boundaryAtOrBefore(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}
	for i := max; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return 0
}
