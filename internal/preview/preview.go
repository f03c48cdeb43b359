// Package preview builds short overviews of a document: its leading headings,
// its opening sentences and a frequency-ranked summary.
package preview

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

const (
	outlineLines  = 2
	snippetCount  = 3
	summaryLength = 3
)

// Preview is a compact overview of a document.
type Preview struct {
	Outline  []string
	Snippets []string
	Summary  string
}

var (
	headingLine  = regexp.MustCompile(`^#+\s+|^([0-9]+\.)+\s+`)
	markdownMark = regexp.MustCompile(`^#+\s+`)
)

// Builder produces previews using a sentence segmenter.
type Builder struct {
	segmenter    domain.Segmenter
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewBuilder creates a preview builder. A nil segmenter uses the regex splitter.
func NewBuilder(segmenter domain.Segmenter) *Builder {
	if segmenter == nil {
		segmenter = segment.NewRegex()
	}
	return &Builder{
		segmenter:    segmenter,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Build returns the preview of text.
func (b *Builder) Build(text string) Preview {
	var p Preview
	for _, line := range strings.Split(text, "\n") {
		if len(p.Outline) == outlineLines {
			break
		}
		if headingLine.MatchString(line) {
			p.Outline = append(p.Outline, strings.TrimSpace(markdownMark.ReplaceAllString(line, "")))
		}
	}
	sentences := b.segmenter.Split(text)
	p.Snippets = sentences[:min(snippetCount, len(sentences))]
	p.Summary = b.summarize(sentences, summaryLength)
	return p
}

// summarize ranks sentences by the normalised frequency of their non-stopword
// tokens and returns the best ones in document order.
func (b *Builder) summarize(sentences []string, maxSentences int) string {
	if len(sentences) == 0 {
		return ""
	}
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range b.tokens(sent) {
			if _, ok := b.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := b.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		// long sentences would otherwise always win
		if len(toks) > 0 {
			score /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := min(maxSentences, len(scores))
	selected := make([]int, n)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, n)
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func (b *Builder) tokens(text string) []string {
	return b.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "shall", "should", "may", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
