// Package segment splits text into sentences.
//
// Two strategies satisfy the same contract: the Unicode strategy follows the
// UAX #29 sentence boundary rules, the Regex strategy splits after '.', '!'
// or '?' followed by whitespace. Both return trimmed, non-empty sentences in
// document order, and joining them with single spaces reproduces the input up
// to whitespace normalisation.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/RussGuo/Legata/internal/domain"
)

const (
	KindAuto    = "auto"
	KindUnicode = "unicode"
	KindRegex   = "regex"
)

// Unicode segments text using UAX #29 sentence boundaries.
type Unicode struct{}

// NewUnicode creates a Unicode sentence segmenter.
func NewUnicode() *Unicode { return &Unicode{} }

// Name returns the identifier of this strategy.
func (u *Unicode) Name() string { return KindUnicode }

// Split returns the sentences of text.
func (u *Unicode) Split(text string) []string {
	var out []string
	state := -1
	rest := text
	for len(rest) > 0 {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		if s := strings.TrimSpace(sentence); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Regex segments text after terminal punctuation followed by whitespace.
type Regex struct {
	boundary *regexp.Regexp
}

// NewRegex creates the regex fallback segmenter.
func NewRegex() *Regex {
	return &Regex{boundary: regexp.MustCompile(`[.!?]\s+`)}
}

// Name returns the identifier of this strategy.
func (r *Regex) Name() string { return KindRegex }

// Split returns the sentences of text.
func (r *Regex) Split(text string) []string {
	var out []string
	prev := 0
	for _, m := range r.boundary.FindAllStringIndex(text, -1) {
		// keep the punctuation mark, drop the whitespace
		if s := strings.TrimSpace(text[prev : m[0]+1]); s != "" {
			out = append(out, s)
		}
		prev = m[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}

var (
	probeText = "The probe has two sentences. Does it split?"
	probeWant = []string{"The probe has two sentences.", "Does it split?"}
)

// Detect returns the segmenter for kind. "auto" (or empty) probes the Unicode
// segmenter and falls back to the regex strategy when the probe misbehaves.
func Detect(kind string) (domain.Segmenter, error) {
	switch kind {
	case KindAuto, "":
		u := NewUnicode()
		if probe(u) {
			return u, nil
		}
		return NewRegex(), nil
	case KindUnicode:
		return NewUnicode(), nil
	case KindRegex:
		return NewRegex(), nil
	default:
		return nil, fmt.Errorf("%w: segmenter %q", domain.ErrUnsupportedType, kind)
	}
}

func probe(s domain.Segmenter) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	got := s.Split(probeText)
	if len(got) != len(probeWant) {
		return false
	}
	for i := range got {
		if got[i] != probeWant[i] {
			return false
		}
	}
	return true
}
