// Package diff aligns clause sections of two document versions by title and
// reports what changed, with heuristic risk notes.
package diff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/segment"
)

// Granularity selects the unit that modified clauses are compared in.
type Granularity string

const (
	Sentence Granularity = "sentence"
	Token    Granularity = "token"
)

// DefaultTruncate is the number of characters kept from added or deleted clause bodies.
const DefaultTruncate = 240

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Sentence, Token:
		return g, nil
	case "":
		return Sentence, nil
	default:
		return "", fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, s)
	}
}

// Differ compares clause lists.
type Differ struct {
	segmenter domain.Segmenter
	truncate  int
}

// Option configures a Differ.
type Option func(*Differ)

// WithSegmenter sets the sentence splitter used in sentence mode.
func WithSegmenter(s domain.Segmenter) Option {
	return func(d *Differ) {
		if s != nil {
			d.segmenter = s
		}
	}
}

// WithTruncate sets how many characters of an added or deleted body are shown.
func WithTruncate(n int) Option {
	return func(d *Differ) {
		if n > 0 {
			d.truncate = n
		}
	}
}

// New creates a Differ.
func New(opts ...Option) *Differ {
	d := &Differ{segmenter: segment.NewRegex(), truncate: DefaultTruncate}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diff compares a and b with default settings.
func Diff(a, b []domain.Section, g Granularity) []domain.DiffUnit {
	return New().Diff(a, b, g)
}

// Diff returns one unit per clause title that was added, deleted or changed,
// in order of first appearance in a and then in b. Unchanged clauses are
// omitted. When a title repeats within one document its last section is used.
func (d *Differ) Diff(a, b []domain.Section, g Granularity) []domain.DiffUnit {
	keysA, byA := index(a)
	keysB, byB := index(b)

	keys := keysA
	for _, k := range keysB {
		if _, ok := byA[k]; !ok {
			keys = append(keys, k)
		}
	}

	var units []domain.DiffUnit
	for _, k := range keys {
		sa, inA := byA[k]
		sb, inB := byB[k]
		switch {
		case inA && !inB:
			units = append(units, domain.DiffUnit{
				Clause:   sa.Title,
				Location: sa.Title,
				Before:   d.ellipsize(sa.Body),
				Type:     domain.ChangeDelete,
				Risk:     RiskNote(sa.Body),
			})
		case !inA && inB:
			units = append(units, domain.DiffUnit{
				Clause:   sb.Title,
				Location: sb.Title,
				After:    d.ellipsize(sb.Body),
				Type:     domain.ChangeAdd,
				Risk:     RiskNote(sb.Body),
			})
		case sa.Body != sb.Body:
			units = append(units, domain.DiffUnit{
				Clause:   sa.Title,
				Location: sa.Title,
				Before:   d.render(sa.Body, sb.Body, g),
				After:    d.render(sb.Body, sa.Body, g),
				Type:     domain.ChangeModify,
				Risk:     RiskNote(sb.Body),
			})
		}
	}
	return units
}

func (d *Differ) render(from, to string, g Granularity) string {
	if g == Token {
		return renderTokens(from, to)
	}
	return renderSentences(d.segmenter.Split(from), d.segmenter.Split(to))
}

func (d *Differ) ellipsize(s string) string {
	r := []rune(s)
	if len(r) <= d.truncate {
		return s
	}
	return string(r[:d.truncate]) + "…"
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeTitle is the join key for clause titles.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(strings.ToLower(title), " "))
}

func index(sections []domain.Section) ([]string, map[string]domain.Section) {
	var keys []string
	by := make(map[string]domain.Section, len(sections))
	for _, s := range sections {
		k := NormalizeTitle(s.Title)
		if _, seen := by[k]; !seen {
			keys = append(keys, k)
		}
		by[k] = s
	}
	return keys, by
}
