package answer

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

func scored(doc string, start int, text string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{
			ID:         fmt.Sprintf("%s:%d:%d", doc, start, start+len(text)),
			DocumentID: doc,
			Text:       text,
			Start:      start,
			End:        start + len(text),
		},
		Score: score,
	}
}

func TestCompose_NoMatchBelowThreshold(t *testing.T) {
	c := NewComposer(segment.NewRegex(), DefaultOptions())
	ranked := []domain.ScoredChunk{
		scored("a", 0, "The supplier shall deliver conforming goods within ten days.", 0.24),
	}
	got := c.Compose("When are goods delivered?", nil, ranked)
	require.Len(t, got, 1)
	assert.Equal(t, NoMatch, got[0].Text)
	assert.Empty(t, got[0].Citations)
	assert.True(t, IsNoMatch(got))
}

func TestCompose_NoMatchWhenOnlyShortSentences(t *testing.T) {
	c := NewComposer(segment.NewRegex(), DefaultOptions())
	ranked := []domain.ScoredChunk{scored("a", 0, "Short one. Also short.", 0.9)}
	assert.True(t, IsNoMatch(c.Compose("short", nil, ranked)))
}

func TestCompose_NoMatchWithoutChunks(t *testing.T) {
	c := NewComposer(nil, Options{})
	assert.True(t, IsNoMatch(c.Compose("anything", nil, nil)))
}

func TestCompose_CitesOwningChunk(t *testing.T) {
	c := NewComposer(segment.NewRegex(), DefaultOptions())
	ranked := []domain.ScoredChunk{
		scored("msa", 120, "Too short. Either party may terminate on ninety days written notice.", 0.8),
	}
	got := c.Compose("How can a party terminate?", nil, ranked)
	require.Len(t, got, 1)
	assert.Equal(t, "Either party may terminate on ninety days written notice.", got[0].Text)
	require.Len(t, got[0].Citations, 1)
	assert.Equal(t, domain.Citation{DocumentID: "msa", Start: 120, End: ranked[0].Chunk.End}, got[0].Citations[0])
	assert.False(t, IsNoMatch(got))
}

func TestCompose_LexicalOverlapReordersSentences(t *testing.T) {
	c := NewComposer(segment.NewRegex(), DefaultOptions())
	ranked := []domain.ScoredChunk{
		scored("a", 0, "The supplier will deliver goods every single Monday morning.", 0.9),
		scored("b", 0, "Termination requires a notice period of ninety days.", 0.8),
	}
	got := c.Compose("What is the termination notice period?", nil, ranked)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Citations[0].DocumentID)
	assert.Equal(t, "a", got[1].Citations[0].DocumentID)
}

func TestCompose_SuppressesDuplicates(t *testing.T) {
	c := NewComposer(segment.NewRegex(), DefaultOptions())
	text := "Confidential information must be protected for five years."
	ranked := []domain.ScoredChunk{
		scored("a", 0, text, 0.9),
		scored("a", 700, text, 0.85),
	}
	got := c.Compose("confidential", nil, ranked)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Citations[0].Start)
}

func TestCompose_Limits(t *testing.T) {
	var ranked []domain.ScoredChunk
	for i := range 8 {
		ranked = append(ranked, scored("d", i*100, fmt.Sprintf("Sentence number %d is comfortably longer than thirty characters.", i), 0.9))
	}

	t.Run("sentences", func(t *testing.T) {
		got := NewComposer(segment.NewRegex(), DefaultOptions()).Compose("sentence", nil, ranked)
		assert.Len(t, got, 5)
	})

	t.Run("chunks", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxSentences = 20
		got := NewComposer(segment.NewRegex(), opts).Compose("sentence", nil, ranked)
		require.Len(t, got, 6)
		for _, s := range got {
			assert.Less(t, s.Citations[0].Start, 600)
		}
	})
}

func TestCompose_Properties(t *testing.T) {
	c := NewComposer(segment.NewUnicode(), DefaultOptions())
	ranked := []domain.ScoredChunk{
		scored("a", 0, "Fees are due monthly. Payment is due within thirty days of invoice. Late payment accrues interest at two percent.", 0.7),
		scored("b", 0, "Payment is due within thirty days of invoice. Disputes go to arbitration in London under LCIA rules.", 0.6),
		scored("c", 0, "Irrelevant text that barely matters to anyone reading it.", 0.1),
	}
	got := c.Compose("When is payment due?", nil, ranked)
	seen := map[string]bool{}
	for _, s := range got {
		assert.GreaterOrEqual(t, utf8.RuneCountInString(s.Text), 30)
		assert.False(t, seen[s.Text], "duplicate %q", s.Text)
		seen[s.Text] = true
		assert.NotEqual(t, "c", s.Citations[0].DocumentID)
	}
	assert.Equal(t, "Payment is due within thirty days of invoice.", got[0].Text)
}

func TestTokens(t *testing.T) {
	lower := cases.Lower(language.English)
	assert.Equal(t, []string{"hello", "world", "42x"}, tokens(lower, "Hello, World! 42x"))
	assert.Empty(t, tokens(lower, "?!"))
}

func TestOverlap(t *testing.T) {
	q := map[string]struct{}{"notice": {}, "period": {}}
	assert.InDelta(t, 0.5, overlap(q, []string{"notice", "days"}), 1e-9)
	assert.Zero(t, overlap(q, nil))
}
