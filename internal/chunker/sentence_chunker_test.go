package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

func contract(n int) string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Clause %03d obliges the supplier to deliver conforming goods on time.", i)
	}
	return strings.Join(sentences, " ")
}

func TestNewSentenceChunker(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewSentenceChunker()
		assert.Equal(t, DefaultWindow, c.window)
		assert.Equal(t, DefaultOverlap, c.overlap)
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := NewSentenceChunker(WithWindow(0), WithOverlap(-1), WithSegmenter(nil))
		assert.Equal(t, DefaultWindow, c.window)
		assert.Equal(t, DefaultOverlap, c.overlap)
		assert.NotNil(t, c.segmenter)
	})

	t.Run("overlap exceeds window", func(t *testing.T) {
		c := NewSentenceChunker(WithWindow(100), WithOverlap(150))
		assert.Less(t, c.overlap, c.window)
	})
}

func TestChunk_EmptyDocument(t *testing.T) {
	c := NewSentenceChunker()
	assert.Empty(t, c.Chunk(domain.Document{ID: "doc"}))
	assert.Empty(t, c.Chunk(domain.Document{ID: "doc", Text: "  \n "}))
}

func TestChunk_ShortDocument(t *testing.T) {
	c := NewSentenceChunker()
	doc := domain.Document{ID: "doc", Text: "The term is two years. Either party may renew."}

	chunks := c.Chunk(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, doc.Text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, utf8.RuneCountInString(doc.Text), chunks[0].End)
	assert.Equal(t, "doc:0:46", chunks[0].ID)
	assert.False(t, chunks[0].Embedded())
}

func TestChunk_LongSentenceIsNotSplit(t *testing.T) {
	long := strings.Repeat("word ", 300) + "end."
	c := NewSentenceChunker()
	chunks := c.Chunk(domain.Document{ID: "doc", Text: "Short opener. " + long})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Short opener.", chunks[0].Text)
	assert.True(t, strings.HasSuffix(chunks[1].Text, strings.TrimSpace(long)))
}

func TestChunk_CoverageAndOverlap(t *testing.T) {
	text := contract(60)
	runes := []rune(text)
	for _, seg := range []domain.Segmenter{segment.NewUnicode(), segment.NewRegex()} {
		t.Run(seg.Name(), func(t *testing.T) {
			c := NewSentenceChunker(WithSegmenter(seg))
			chunks := c.Chunk(domain.Document{ID: "msa", Text: text})
			require.Greater(t, len(chunks), 1)

			assert.Equal(t, 0, chunks[0].Start)
			assert.Equal(t, len(runes), chunks[len(chunks)-1].End)
			for i, ch := range chunks {
				require.GreaterOrEqual(t, ch.Start, 0)
				require.LessOrEqual(t, ch.Start, ch.End)
				assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text, "chunk %d span", i)
				if i == 0 {
					continue
				}
				prev := chunks[i-1]
				assert.GreaterOrEqual(t, ch.Start, prev.Start)
				assert.LessOrEqual(t, ch.Start, prev.End, "gap between chunk %d and %d", i-1, i)
				assert.Equal(t, DefaultOverlap, prev.End-ch.Start)
			}
		})
	}
}

func TestChunk_WindowRespected(t *testing.T) {
	c := NewSentenceChunker()
	for _, ch := range c.Chunk(domain.Document{ID: "d", Text: contract(40)}) {
		// window plus the joining spaces of at most one window's worth of sentences
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), DefaultWindow+20)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := NewSentenceChunker()
	doc := domain.Document{ID: "nda", Text: contract(35)}

	first := c.Chunk(doc)
	second := c.Chunk(doc)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Start, second[i].Start)
		assert.Equal(t, first[i].End, second[i].End)
		assert.Equal(t, ChunkID("nda", first[i].Start, first[i].End), first[i].ID)
	}
}

func TestChunk_NoOverlap(t *testing.T) {
	text := contract(30)
	c := NewSentenceChunker(WithOverlap(0))
	chunks := c.Chunk(domain.Document{ID: "d", Text: text})
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		// without overlap the cursor advances by the whole closed chunk
		assert.Equal(t, chunks[i-1].End, chunks[i].Start)
	}
}
