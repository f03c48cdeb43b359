package answer

import (
	"fmt"
	"strings"

	"github.com/RussGuo/Legata/internal/domain"
)

// Markdown renders an answer as a Markdown note with takeaways, evidence and
// numbered footnotes. nameFor maps a document id to a display name; when nil
// the id is printed.
func Markdown(a domain.Answer, nameFor func(documentID string) string) string {
	if nameFor == nil {
		nameFor = func(id string) string { return id }
	}
	title := strings.TrimSpace(a.Question)
	if title == "" {
		title = "Answer"
	}

	// footnote numbers follow citation order across the whole answer
	refs := make([][]int, len(a.Sentences))
	var notes []string
	for i, s := range a.Sentences {
		for _, c := range s.Citations {
			notes = append(notes, fmt.Sprintf("%s [%d:%d]", nameFor(c.DocumentID), c.Start, c.End))
			refs[i] = append(refs[i], len(notes))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)

	b.WriteString("\n## Key Takeaways\n")
	for i, s := range a.Sentences {
		if i == 3 {
			break
		}
		b.WriteString("- " + s.Text)
		if len(refs[i]) > 0 {
			b.WriteString(" ")
			for _, n := range refs[i] {
				fmt.Fprintf(&b, "[%d]", n)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Evidence\n")
	for _, s := range a.Sentences {
		b.WriteString("- " + s.Text + "\n")
	}

	b.WriteString("\n## Footnotes\n")
	for i, n := range notes {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, n)
	}
	return b.String()
}
