package textchunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk_ShortText(t *testing.T) {
	c := New()
	chunks := c.Chunk("Hello, world!")
	assert.Equal(t, []string{"Hello, world!"}, chunks)
}

func TestChunk_ExactChunkSize(t *testing.T) {
	c := New()
	text := strings.Repeat("a", 250)
	chunks := c.Chunk(text)
	// exactly one chunk, no trailing empty chunk
	assert.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_ExactlyDivisible(t *testing.T) {
	c := New()
	text := strings.Repeat("a", 500)
	chunks := c.Chunk(text)
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 250)
	assert.Len(t, chunks[1], 250)
	assert.Equal(t, text, Dechunk(chunks))
}

func TestChunk_TruncatesToTotalCap(t *testing.T) {
	c := New()
	text := strings.Repeat("a", 5000)
	chunks := c.Chunk(text)
	assert.Equal(t, 4096, len(Dechunk(chunks)))
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New()
	chunks := c.Chunk("")
	assert.Equal(t, []string{""}, chunks)
}

func TestChunk_CustomSizes(t *testing.T) {
	c := NewWithSizes(100, 300)
	text := strings.Repeat("a", 250)
	chunks := c.Chunk(text)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestChunk_SplitsMidWord(t *testing.T) {
	c := NewWithSizes(5, 4096)
	chunks := c.Chunk("Hello World")
	assert.Equal(t, []string{"Hello", " Worl", "d"}, chunks)
}

func TestChunk_MultiByteAtBoundary(t *testing.T) {
	// each rune is 3 bytes; a 10-byte chunk holds three runes (9 bytes)
	// and the fourth is pushed whole into the next chunk
	c := NewWithSizes(10, 4096)
	text := "こんにちは"
	chunks := c.Chunk(text)
	assert.Equal(t, []string{"こんに", "ちは"}, chunks)
	assert.Equal(t, text, Dechunk(chunks))
}

func TestChunk_SplitBetweenEmoji(t *testing.T) {
	c := NewWithSizes(4, 4096)
	chunks := c.Chunk("🎉🌟")
	assert.Equal(t, []string{"🎉", "🌟"}, chunks)
}

func TestChunk_TruncationRespectsRuneBoundary(t *testing.T) {
	c := NewWithSizes(250, 5)
	text := strings.Repeat("🎉", 10) // 40 bytes of 4-byte runes
	chunks := c.Chunk(text)
	// a 5-byte cap fits exactly one emoji; no partial sequence remains
	assert.Equal(t, "🎉", Dechunk(chunks))
}

func TestChunk_NeverSplitsRunes(t *testing.T) {
	c := NewWithSizes(7, 4096)
	text := "abc😀def😀ghi😀jkl"
	chunks := c.Chunk(text)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %q splits a rune", chunk)
		assert.LessOrEqual(t, len(chunk), 7)
	}
	assert.Equal(t, text, Dechunk(chunks))
}

func TestChunk_RoundTripUnderCap(t *testing.T) {
	inputs := []string{
		"a",
		"hello world",
		"Line 1\nLine 2\nLine 3",
		strings.Repeat("x", 1000),
		"Hello こんにちは World أهلا وسهلا",
		strings.Repeat("🎉", 100),
	}
	for _, k := range []int{5, 50, 250} {
		c := NewWithSizes(k, DefaultMaxTotalBytes)
		for _, s := range inputs {
			assert.Equal(t, s, Dechunk(c.Chunk(s)), "k=%d input=%q", k, s)
		}
	}
}

func TestNewWithSizes_FallsBackToDefaults(t *testing.T) {
	c := NewWithSizes(0, -1)
	assert.Equal(t, New(), c)
}
