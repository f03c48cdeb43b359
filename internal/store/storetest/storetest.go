// Package storetest holds the behaviour every domain.Store must show.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RussGuo/Legata/internal/domain"
)

// Run exercises a store created fresh by open for every subtest.
func Run(t *testing.T, open func(t *testing.T) domain.Store) {
	ctx := context.Background()
	added := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("documents", func(t *testing.T) {
		s := open(t)
		a := domain.Document{ID: "a", Name: "msa.txt", Type: domain.FileTypeTXT, Text: "Term: two years.", Size: 16, AddedAt: added}
		b := domain.Document{ID: "b", Name: "nda.pdf", Type: domain.FileTypePDF, Size: 2048, AddedAt: added.Add(time.Minute)}
		require.NoError(t, s.PutDocument(ctx, a))
		require.NoError(t, s.PutDocument(ctx, b))

		got, err := s.GetDocument(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, a.Text, got.Text)
		assert.Equal(t, a.Type, got.Type)
		assert.True(t, a.AddedAt.Equal(got.AddedAt))

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].ID)
		assert.Equal(t, "b", docs[1].ID)
		assert.Equal(t, int64(2048), docs[1].Size)

		a.Name = "msa_v2.txt"
		require.NoError(t, s.PutDocument(ctx, a))
		docs, err = s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "msa_v2.txt", docs[0].Name)
	})

	t.Run("missing document", func(t *testing.T) {
		s := open(t)
		_, err := s.GetDocument(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("chunks", func(t *testing.T) {
		s := open(t)
		chunks := []domain.Chunk{
			{ID: "b:0:10", DocumentID: "b", Text: "second doc", Start: 0, End: 10},
			{ID: "a:5:20", DocumentID: "a", Text: "later span", Start: 5, End: 20, Embedding: []float64{0.25, -0.5, 1e-9}, EmbeddedBy: "hashing:fnv64a-3"},
			{ID: "a:0:10", DocumentID: "a", Text: "first span", Start: 0, End: 10},
		}
		require.NoError(t, s.PutChunks(ctx, chunks))

		all, err := s.ListChunks(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a:0:10", "a:5:20", "b:0:10"}, []string{all[0].ID, all[1].ID, all[2].ID})
		assert.Equal(t, []float64{0.25, -0.5, 1e-9}, all[1].Embedding)
		assert.Equal(t, "hashing:fnv64a-3", all[1].EmbeddedBy)
		assert.Empty(t, all[0].EmbeddedBy)
		assert.False(t, all[0].Embedded())

		byDoc, err := s.ChunksByDocuments(ctx, []string{"b"})
		require.NoError(t, err)
		require.Len(t, byDoc, 1)
		assert.Equal(t, "second doc", byDoc[0].Text)

		none, err := s.ChunksByDocuments(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("chunk upsert attaches embedding", func(t *testing.T) {
		s := open(t)
		c := domain.Chunk{ID: "a:0:4", DocumentID: "a", Text: "text", Start: 0, End: 4}
		require.NoError(t, s.PutChunks(ctx, []domain.Chunk{c}))
		c.Embedding = []float64{1, 2}
		require.NoError(t, s.PutChunks(ctx, []domain.Chunk{c}))

		all, err := s.ListChunks(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, []float64{1, 2}, all[0].Embedding)

		// returned slices are copies
		all[0].Embedding[0] = 99
		again, err := s.ListChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, again[0].Embedding[0])
	})

	t.Run("clear", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.PutDocument(ctx, domain.Document{ID: "a", AddedAt: added}))
		require.NoError(t, s.PutChunks(ctx, []domain.Chunk{{ID: "a:0:1", DocumentID: "a", End: 1}}))
		require.NoError(t, s.Clear(ctx))

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
		chunks, err := s.ListChunks(ctx)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("invalid ids", func(t *testing.T) {
		s := open(t)
		assert.ErrorIs(t, s.PutDocument(ctx, domain.Document{}), domain.ErrInvalidInput)
		assert.ErrorIs(t, s.PutChunks(ctx, []domain.Chunk{{Text: "x"}}), domain.ErrInvalidInput)
	})
}
