package diff

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var tokenPattern = regexp.MustCompile(`\s+|\S+`)

type span struct {
	tag  byte
	a, b []string
}

// align matches a against b and returns the edit script as spans of tokens.
// Pure insertions and deletions are slid left while the preceding equal run
// ends with the same token, so "x and y" against "x y" reports " and" rather
// than "and ".
func align(a, b []string) []span {
	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	var spans []span
	for _, op := range m.GetOpCodes() {
		spans = append(spans, span{
			tag: op.Tag,
			a:   slices.Clone(a[op.I1:op.I2]),
			b:   slices.Clone(b[op.J1:op.J2]),
		})
	}
	return slide(spans)
}

func slide(spans []span) []span {
	for i := 1; i < len(spans); i++ {
		if spans[i-1].tag != 'e' {
			continue
		}
		var moved *[]string
		switch spans[i].tag {
		case 'i':
			moved = &spans[i].b
		case 'd':
			moved = &spans[i].a
		default:
			continue
		}
		prev := &spans[i-1]
		var carry []string
		for len(prev.a) > 0 && len(*moved) > 0 && prev.a[len(prev.a)-1] == (*moved)[len(*moved)-1] {
			tok := prev.a[len(prev.a)-1]
			prev.a = prev.a[:len(prev.a)-1]
			prev.b = prev.b[:len(prev.b)-1]
			*moved = append([]string{tok}, (*moved)[:len(*moved)-1]...)
			carry = append([]string{tok}, carry...)
		}
		if len(carry) == 0 {
			continue
		}
		if i+1 < len(spans) && spans[i+1].tag == 'e' {
			spans[i+1].a = append(slices.Clone(carry), spans[i+1].a...)
			spans[i+1].b = append(slices.Clone(carry), spans[i+1].b...)
		} else {
			spans = slices.Insert(spans, i+1, span{tag: 'e', a: slices.Clone(carry), b: slices.Clone(carry)})
		}
	}
	return slices.DeleteFunc(spans, func(s span) bool {
		return s.tag == 'e' && len(s.a) == 0
	})
}

// renderTokens marks word-level changes from a to b. Tokens keep their
// whitespace, so unchanged text is reproduced exactly.
func renderTokens(a, b string) string {
	var out strings.Builder
	for _, s := range align(tokenPattern.FindAllString(a, -1), tokenPattern.FindAllString(b, -1)) {
		switch s.tag {
		case 'e':
			out.WriteString(strings.Join(s.a, ""))
		case 'd':
			out.WriteString(removed(strings.Join(s.a, "")))
		case 'i':
			out.WriteString(added(strings.Join(s.b, "")))
		case 'r':
			out.WriteString(removed(strings.Join(s.a, "")))
			out.WriteString(added(strings.Join(s.b, "")))
		}
	}
	return out.String()
}

// renderSentences marks whole sentences removed from a or added in b.
func renderSentences(a, b []string) string {
	var parts []string
	for _, s := range align(a, b) {
		switch s.tag {
		case 'e':
			parts = append(parts, strings.Join(s.a, " "))
		case 'd':
			parts = append(parts, wrapAll(s.a, removed))
		case 'i':
			parts = append(parts, wrapAll(s.b, added))
		case 'r':
			parts = append(parts, wrapAll(s.a, removed), wrapAll(s.b, added))
		}
	}
	return strings.Join(parts, " ")
}

func wrapAll(items []string, wrap func(string) string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = wrap(it)
	}
	return strings.Join(out, " ")
}

func removed(s string) string { return "[-" + s + "-]" }

func added(s string) string { return "{+" + s + "+}" }
