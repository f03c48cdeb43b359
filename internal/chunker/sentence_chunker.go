// Package chunker splits documents into overlapping, sentence-aligned passages.
package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

// DefaultWindow is the target number of characters per chunk.
const DefaultWindow = 900

// DefaultOverlap is the number of trailing characters carried into the next chunk.
const DefaultOverlap = 200

// SentenceChunker accumulates sentences into character windows with overlap.
// Sentences are never split; a sentence longer than the window becomes its own chunk.
type SentenceChunker struct {
	window    int
	overlap   int
	segmenter domain.Segmenter
}

// Option configures the chunker.
type Option func(*SentenceChunker)

// WithWindow sets the window size in characters.
func WithWindow(n int) Option {
	return func(c *SentenceChunker) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithOverlap sets the overlap in characters.
func WithOverlap(n int) Option {
	return func(c *SentenceChunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// WithSegmenter sets the sentence segmenter.
func WithSegmenter(s domain.Segmenter) Option {
	return func(c *SentenceChunker) {
		if s != nil {
			c.segmenter = s
		}
	}
}

// NewSentenceChunker creates a chunker with the given options.
func NewSentenceChunker(opts ...Option) *SentenceChunker {
	c := &SentenceChunker{
		window:    DefaultWindow,
		overlap:   DefaultOverlap,
		segmenter: segment.NewRegex(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.window {
		c.overlap = c.window / 4
	}
	return c
}

// Chunk partitions the document text. The same text always yields the same
// spans and ids.
func (c *SentenceChunker) Chunk(document domain.Document) []domain.Chunk {
	if document.Text == "" {
		return nil
	}
	var (
		chunks  []domain.Chunk
		current []string
		count   int
		start   int
	)
	for _, s := range c.segmenter.Split(document.Text) {
		n := utf8.RuneCountInString(s)
		if count+n > c.window && len(current) > 0 {
			text := strings.Join(current, " ")
			chunks = append(chunks, newChunk(document.ID, text, start))

			tail := lastRunes(text, c.overlap)
			current = nil
			if tail != "" {
				current = []string{tail}
			}
			start += utf8.RuneCountInString(text) - utf8.RuneCountInString(tail)
			count = utf8.RuneCountInString(tail)
		}
		current = append(current, s)
		count += n
	}
	if len(current) > 0 {
		chunks = append(chunks, newChunk(document.ID, strings.Join(current, " "), start))
	}
	return chunks
}

// ChunkID derives the identity of a chunk from its document and span.
func ChunkID(documentID string, start, end int) string {
	return documentID + ":" + strconv.Itoa(start) + ":" + strconv.Itoa(end)
}

func newChunk(documentID, text string, start int) domain.Chunk {
	end := start + utf8.RuneCountInString(text)
	return domain.Chunk{
		ID:         ChunkID(documentID, start, end),
		DocumentID: documentID,
		Text:       text,
		Start:      start,
		End:        end,
	}
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
