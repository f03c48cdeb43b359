package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RussGuo/Legata/internal/clause"
	"github.com/RussGuo/Legata/internal/domain"
)

func TestDiff_ModifiedIndemnity(t *testing.T) {
	a := []domain.Section{{Title: "Term", Body: "Supplier shall indemnify Client up to $100k."}}
	b := []domain.Section{{Title: "Term", Body: "Supplier shall indemnify and hold harmless Client up to $50k."}}

	units := Diff(a, b, Token)
	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, domain.ChangeModify, u.Type)
	assert.Equal(t, "Term", u.Clause)
	assert.Equal(t, "Term", u.Location)
	assert.Equal(t, "Supplier shall indemnify{+ and hold harmless+} Client up to [-$100k.-]{+$50k.+}", u.Before)
	assert.Equal(t, "Supplier shall indemnify[- and hold harmless-] Client up to [-$50k.-]{+$100k.+}", u.After)

	rule, ok := Match(b[0].Body)
	require.True(t, ok)
	assert.Equal(t, "indemnification", rule.Category)
	assert.Equal(t, rule.Note, u.Risk)
}

func TestDiff_ModifiedSentences(t *testing.T) {
	a := []domain.Section{{Title: "Payment", Body: "Fees are due monthly. Late fees apply. Invoices are sent by email."}}
	b := []domain.Section{{Title: "payment", Body: "Fees are due monthly. Invoices are sent by email. Disputes must be raised in writing."}}

	units := Diff(a, b, Sentence)
	require.Len(t, units, 1)
	assert.Equal(t, "Fees are due monthly. [-Late fees apply.-] Invoices are sent by email. {+Disputes must be raised in writing.+}", units[0].Before)
	assert.Equal(t, "Fees are due monthly. {+Late fees apply.+} Invoices are sent by email. [-Disputes must be raised in writing.-]", units[0].After)
	assert.Empty(t, units[0].Risk)
}

func TestDiff_AddAndDelete(t *testing.T) {
	a := []domain.Section{
		{Title: "Scope", Body: "Services as described."},
		{Title: "Non-Compete", Body: "Employee shall not compete; non-compete lasts a year."},
	}
	b := []domain.Section{
		{Title: "Scope", Body: "Services as described."},
		{Title: "Governing Law", Body: "This agreement is subject to the governing law of England."},
	}

	units := Diff(a, b, Sentence)
	require.Len(t, units, 2)

	del := units[0]
	assert.Equal(t, domain.ChangeDelete, del.Type)
	assert.Equal(t, "Non-Compete", del.Clause)
	assert.Equal(t, a[1].Body, del.Before)
	assert.Empty(t, del.After)
	assert.Equal(t, "Restrictive covenant updated.", del.Risk)

	add := units[1]
	assert.Equal(t, domain.ChangeAdd, add.Type)
	assert.Equal(t, "Governing Law", add.Clause)
	assert.Empty(t, add.Before)
	assert.Equal(t, b[1].Body, add.After)
	assert.Equal(t, "Governing law or venue modified.", add.Risk)
}

func TestDiff_Unchanged(t *testing.T) {
	s := []domain.Section{{Title: "Term", Body: "Two years."}}
	assert.Empty(t, Diff(s, s, Token))
	assert.Empty(t, Diff(nil, nil, Sentence))
}

func TestDiff_TitleNormalisation(t *testing.T) {
	a := []domain.Section{{Title: "  Governing   LAW ", Body: "England."}}
	b := []domain.Section{{Title: "governing law", Body: "England."}}
	assert.Empty(t, Diff(a, b, Sentence))
}

func TestDiff_DuplicateTitlesLastWins(t *testing.T) {
	a := []domain.Section{
		{Title: "Fees", Body: "first"},
		{Title: "Term", Body: "one year"},
		{Title: "Fees", Body: "second"},
	}
	b := []domain.Section{{Title: "Fees", Body: "second"}}

	units := Diff(a, b, Token)
	require.Len(t, units, 1)
	assert.Equal(t, "Term", units[0].Clause)
	assert.Equal(t, domain.ChangeDelete, units[0].Type)
}

func TestDiff_KeyOrder(t *testing.T) {
	a := []domain.Section{{Title: "B", Body: "x"}, {Title: "A", Body: "x"}}
	b := []domain.Section{{Title: "C", Body: "y"}, {Title: "A", Body: "z"}}

	units := Diff(a, b, Token)
	require.Len(t, units, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{units[0].Clause, units[1].Clause, units[2].Clause})
}

func TestDiff_Truncation(t *testing.T) {
	body := strings.Repeat("é", 300)
	units := New(WithTruncate(10)).Diff([]domain.Section{{Title: "Long", Body: body}}, nil, Sentence)
	require.Len(t, units, 1)
	assert.Equal(t, strings.Repeat("é", 10)+"…", units[0].Before)

	units = Diff(nil, []domain.Section{{Title: "Long", Body: body}}, Sentence)
	assert.Equal(t, strings.Repeat("é", DefaultTruncate)+"…", units[0].After)
}

func TestDiff_FromDetectedClauses(t *testing.T) {
	a := clause.Detect("# Confidentiality\nInformation stays confidential for two years.\n# Fees\nPaid monthly.")
	b := clause.Detect("# Confidentiality\nInformation stays confidential for five years.\n# Fees\nPaid monthly.")

	units := Diff(a, b, Token)
	require.Len(t, units, 1)
	assert.Equal(t, "Confidentiality", units[0].Clause)
	assert.Contains(t, units[0].Before, "[-two-]{+five+}")
	assert.Equal(t, "Confidentiality duration or scope changed.", units[0].Risk)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("TOKEN")
	require.NoError(t, err)
	assert.Equal(t, Token, g)

	g, err = ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Sentence, g)

	_, err = ParseGranularity("word")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
