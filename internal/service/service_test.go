package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RussGuo/Legata/internal/answer"
	"github.com/RussGuo/Legata/internal/chunker"
	"github.com/RussGuo/Legata/internal/diff"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/embedding"
	"github.com/RussGuo/Legata/internal/embedding/hashing"
	"github.com/RussGuo/Legata/internal/extract"
	"github.com/RussGuo/Legata/internal/store/memory"
)

const paymentTerms = "Payment is due within thirty days of the invoice date."

type countingEmbedder struct {
	*hashing.Embedder
	texts atomic.Int32
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	c.texts.Add(int32(len(texts)))
	return c.Embedder.Embed(ctx, texts)
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string   { return "failing" }
func (failingEmbedder) Dimension() int { return 0 }
func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("backend down")
}

func newService(t *testing.T, e embedding.Embedder) *Service {
	t.Helper()
	svc, err := New(Components{
		Extractor: extract.New(),
		Store:     memory.NewStore(),
		Chunker:   chunker.NewSentenceChunker(),
		Gateway:   embedding.NewGateway(embedding.Static(e)),
		Composer:  answer.NewComposer(nil, answer.DefaultOptions()),
		Differ:    diff.New(),
	})
	require.NoError(t, err)
	return svc
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	return p
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Components{Store: memory.NewStore()})
	assert.Error(t, err)
}

func TestAddFiles_ExpandsGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "First contract.")
	writeFile(t, dir, "b.txt", "Second contract.")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, "b.txt", docs[1].Name)

	listed, err := svc.Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	names, err := svc.DocumentNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", names[docs[0].ID])
}

func TestAddFiles_Errors(t *testing.T) {
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()

	_, err := svc.AddFiles(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddFiles(ctx, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAsk_AnswersWithCitation(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "terms.txt", paymentTerms)})
	require.NoError(t, err)

	var fractions []float64
	ans, err := svc.Ask(ctx, "  "+paymentTerms+" ", []string{docs[0].ID}, func(f float64) {
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Equal(t, paymentTerms, ans.Question)
	require.Len(t, ans.Sentences, 1)
	assert.Equal(t, paymentTerms, ans.Sentences[0].Text)
	require.Len(t, ans.Sentences[0].Citations, 1)
	cite := ans.Sentences[0].Citations[0]
	assert.Equal(t, docs[0].ID, cite.DocumentID)

	src, err := svc.Source(ctx, cite)
	require.NoError(t, err)
	assert.Equal(t, paymentTerms, src)

	require.NotEmpty(t, fractions)
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
}

func TestAsk_NoMatch(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "terms.txt", paymentTerms)})
	require.NoError(t, err)

	ans, err := svc.Ask(ctx, "zebra giraffe", []string{docs[0].ID}, nil)
	require.NoError(t, err)
	assert.True(t, answer.IsNoMatch(ans.Sentences))
}

func TestAsk_InvalidInput(t *testing.T) {
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()

	_, err := svc.Ask(ctx, "   ", []string{"x"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ask(ctx, "question", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ask(ctx, "question", []string{"unknown"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAsk_EmbeddingUnavailable(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, failingEmbedder{})
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "terms.txt", paymentTerms)})
	require.NoError(t, err)

	_, err = svc.Ask(ctx, "payment", []string{docs[0].ID}, nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndex_ReusesStoredEmbeddings(t *testing.T) {
	dir := t.TempDir()
	emb := &countingEmbedder{Embedder: hashing.NewEmbedder(0)}
	svc := newService(t, emb)
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "terms.txt", paymentTerms)})
	require.NoError(t, err)
	ids := []string{docs[0].ID}

	first, err := svc.Index(ctx, ids, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].Embedded())
	assert.Equal(t, int32(1), emb.texts.Load())

	second, err := svc.Index(ctx, ids, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), emb.texts.Load())
}

func TestIndex_ReembedsAfterEmbedderChange(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	st := memory.NewStore()
	withEmbedder := func(e embedding.Embedder) *Service {
		svc, err := New(Components{
			Extractor: extract.New(),
			Store:     st,
			Chunker:   chunker.NewSentenceChunker(chunker.WithWindow(40), chunker.WithOverlap(0)),
			Gateway:   embedding.NewGateway(embedding.Static(e)),
		})
		require.NoError(t, err)
		return svc
	}

	text := paymentTerms + " Late fees accrue at one percent per month. Either party may terminate on notice."
	first := withEmbedder(hashing.NewEmbedder(512))
	docs, err := first.AddFiles(ctx, []string{writeFile(t, dir, "terms.txt", text)})
	require.NoError(t, err)
	ids := []string{docs[0].ID}

	before, err := first.Index(ctx, ids, nil)
	require.NoError(t, err)
	require.Greater(t, len(before), 1)
	for _, c := range before {
		require.Len(t, c.Embedding, 512)
	}

	emb := &countingEmbedder{Embedder: hashing.NewEmbedder(256)}
	after, err := withEmbedder(emb).Index(ctx, ids, nil)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, int32(len(before)), emb.texts.Load())
	for _, c := range after {
		assert.Len(t, c.Embedding, 256)
		assert.Equal(t, "hashing:fnv64a-256", c.EmbeddedBy)
	}

	stored, err := st.ListChunks(ctx)
	require.NoError(t, err)
	for _, c := range stored {
		assert.Len(t, c.Embedding, 256)
	}
}

func TestIndex_RequiresDocuments(t *testing.T) {
	svc := newService(t, hashing.NewEmbedder(0))
	_, err := svc.Index(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare(t *testing.T) {
	svc := newService(t, hashing.NewEmbedder(0))
	a := "# Fees\nClient pays monthly.\n# Term\nOne year."
	b := "# Fees\nClient pays yearly.\n# Exit\nTermination requires sixty days written notice."

	units := svc.Compare(a, b, diff.Token)
	require.Len(t, units, 3)
	assert.Equal(t, "Fees", units[0].Clause)
	assert.Equal(t, domain.ChangeModify, units[0].Type)
	assert.Equal(t, "Term", units[1].Clause)
	assert.Equal(t, domain.ChangeDelete, units[1].Type)
	assert.Equal(t, "Exit", units[2].Clause)
	assert.Equal(t, domain.ChangeAdd, units[2].Type)
	assert.Equal(t, "Termination or notice terms altered.", units[2].Risk)
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, hashing.NewEmbedder(0))
	a := writeFile(t, dir, "a.md", "# Law\nGoverned by the laws of Delaware.")
	b := writeFile(t, dir, "b.md", "# Law\nGoverned by the laws of New York.")

	units, err := svc.CompareFiles(context.Background(), a, b, diff.Sentence)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, domain.ChangeModify, units[0].Type)

	docs, err := svc.Documents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSource_ClampsSpan(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "short.txt", "Héllo wörld")})
	require.NoError(t, err)

	src, err := svc.Source(ctx, domain.Citation{DocumentID: docs[0].ID, Start: 6, End: 500})
	require.NoError(t, err)
	assert.Equal(t, "wörld", src)

	src, err = svc.Source(ctx, domain.Citation{DocumentID: docs[0].ID, Start: -3, End: 1})
	require.NoError(t, err)
	assert.Equal(t, "H", src)
}

func TestPreviewAndReset(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, hashing.NewEmbedder(0))
	ctx := context.Background()
	docs, err := svc.AddFiles(ctx, []string{writeFile(t, dir, "c.md", "# Services\nThe vendor provides hosting.")})
	require.NoError(t, err)

	p := svc.Preview(docs[0])
	assert.Equal(t, []string{"Services"}, p.Outline)

	require.NoError(t, svc.Reset(ctx))
	listed, err := svc.Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
