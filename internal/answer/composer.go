// Package answer assembles grounded, cited answers from ranked chunks.
package answer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

// NoMatch is the text of the answer returned when nothing relevant was found.
const NoMatch = "No strong matches found. Try adding documents or rephrasing."

// Options tunes sentence selection.
type Options struct {
	MinSimilarity    float64
	MaxChunks        int
	MaxSentences     int
	MinSentenceChars int
	Locale           language.Tag
}

// DefaultOptions returns the standard selection thresholds.
func DefaultOptions() Options {
	return Options{
		MinSimilarity:    0.25,
		MaxChunks:        6,
		MaxSentences:     5,
		MinSentenceChars: 30,
		Locale:           language.English,
	}
}

// Composer picks the best supported sentences out of the top ranked chunks.
type Composer struct {
	opts      Options
	segmenter domain.Segmenter
}

// NewComposer creates a composer. Zero option fields fall back to defaults.
func NewComposer(segmenter domain.Segmenter, opts Options) *Composer {
	def := DefaultOptions()
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = def.MinSimilarity
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = def.MaxChunks
	}
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = def.MaxSentences
	}
	if opts.MinSentenceChars <= 0 {
		opts.MinSentenceChars = def.MinSentenceChars
	}
	if opts.Locale == language.Und {
		opts.Locale = def.Locale
	}
	if segmenter == nil {
		segmenter = segment.NewRegex()
	}
	return &Composer{opts: opts, segmenter: segmenter}
}

type candidate struct {
	text  string
	score float64
	chunk domain.Chunk
}

// Compose returns the answer sentences for question, best first. ranked must
// already be ordered by descending similarity. chunks is the full candidate
// pool the ranking was computed from; selection only looks at ranked.
func (c *Composer) Compose(question string, chunks []domain.Chunk, ranked []domain.ScoredChunk) []domain.AnswerSentence {
	lower := cases.Lower(c.opts.Locale)
	questionTokens := make(map[string]struct{})
	for _, t := range tokens(lower, question) {
		questionTokens[t] = struct{}{}
	}

	var candidates []candidate
	kept := 0
	for _, sc := range ranked {
		if kept >= c.opts.MaxChunks {
			break
		}
		if sc.Score < c.opts.MinSimilarity {
			continue
		}
		kept++
		for _, s := range c.segmenter.Split(sc.Chunk.Text) {
			candidates = append(candidates, candidate{
				text:  s,
				score: 0.5*sc.Score + 0.5*overlap(questionTokens, tokens(lower, s)),
				chunk: sc.Chunk,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var picked []domain.AnswerSentence
	used := make(map[string]struct{})
	for _, cand := range candidates {
		t := strings.TrimSpace(cand.text)
		if utf8.RuneCountInString(t) < c.opts.MinSentenceChars {
			continue
		}
		if _, dup := used[t]; dup {
			continue
		}
		used[t] = struct{}{}
		picked = append(picked, domain.AnswerSentence{
			Text: t,
			Citations: []domain.Citation{{
				DocumentID: cand.chunk.DocumentID,
				Start:      cand.chunk.Start,
				End:        cand.chunk.End,
			}},
		})
		if len(picked) >= c.opts.MaxSentences {
			break
		}
	}
	if len(picked) == 0 {
		return []domain.AnswerSentence{{Text: NoMatch, Citations: []domain.Citation{}}}
	}
	return picked
}

// IsNoMatch reports whether sentences is the empty-result answer.
func IsNoMatch(sentences []domain.AnswerSentence) bool {
	return len(sentences) == 1 && sentences[0].Text == NoMatch && len(sentences[0].Citations) == 0
}

// overlap is the fraction of sentence tokens that also occur in the question.
func overlap(question map[string]struct{}, sentence []string) float64 {
	hits := 0
	for _, t := range sentence {
		if _, ok := question[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(max(1, len(sentence)))
}

func tokens(lower cases.Caser, s string) []string {
	s = lower.String(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
