package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RussGuo/Legata/internal/domain"
)

func TestMarkdown(t *testing.T) {
	a := domain.Answer{
		Question: "What is the notice period?",
		Sentences: []domain.AnswerSentence{
			{Text: "Notice must be given ninety days in advance.", Citations: []domain.Citation{{DocumentID: "d1", Start: 0, End: 120}}},
			{Text: "Either party may terminate for material breach.", Citations: []domain.Citation{{DocumentID: "d2", Start: 700, End: 950}}},
			{Text: "Termination notices must be in writing.", Citations: []domain.Citation{{DocumentID: "d1", Start: 100, End: 300}}},
			{Text: "Notices are sent to the registered address.", Citations: []domain.Citation{{DocumentID: "d1", Start: 280, End: 400}}},
		},
	}
	names := map[string]string{"d1": "msa_v2.txt", "d2": "nda.txt"}

	md := Markdown(a, func(id string) string { return names[id] })

	assert.True(t, strings.HasPrefix(md, "# What is the notice period?\n"))
	assert.Contains(t, md, "## Key Takeaways\n- Notice must be given ninety days in advance. [1]\n")
	assert.Contains(t, md, "- Termination notices must be in writing. [3]\n")
	assert.NotContains(t, md, "registered address. [4]")
	assert.Contains(t, md, "## Evidence\n")
	assert.Contains(t, md, "- Notices are sent to the registered address.\n")
	assert.Contains(t, md, "## Footnotes\n[1] msa_v2.txt [0:120]\n[2] nda.txt [700:950]\n")
	assert.Contains(t, md, "[4] msa_v2.txt [280:400]\n")

	evidence := md[strings.Index(md, "## Evidence"):strings.Index(md, "## Footnotes")]
	assert.Equal(t, 4, strings.Count(evidence, "\n- "))
}

func TestMarkdown_NoMatch(t *testing.T) {
	a := domain.Answer{Sentences: []domain.AnswerSentence{{Text: NoMatch}}}
	md := Markdown(a, nil)
	assert.True(t, strings.HasPrefix(md, "# Answer\n"))
	assert.Contains(t, md, "- "+NoMatch+"\n")
	assert.True(t, strings.HasSuffix(md, "## Footnotes\n"))
}
