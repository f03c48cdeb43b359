// Package service wires the document pipeline: extraction, chunking,
// embedding, retrieval, answer composition and clause comparison.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RussGuo/Legata/internal/answer"
	"github.com/RussGuo/Legata/internal/clause"
	"github.com/RussGuo/Legata/internal/diff"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/embedding"
	"github.com/RussGuo/Legata/internal/logger"
	"github.com/RussGuo/Legata/internal/preview"
	"github.com/RussGuo/Legata/internal/ranker"
)

// Components are the collaborators a Service runs on. Store, Chunker and
// Gateway are required; the others get defaults.
type Components struct {
	Extractor domain.Extractor
	Store     domain.Store
	Chunker   domain.Chunker
	Gateway   *embedding.Gateway
	Composer  *answer.Composer
	Differ    *diff.Differ
	Previews  *preview.Builder
}

// Service runs the pipeline over documents held in a store. Each call works
// on its own snapshot of the store; concurrent calls over the same documents
// are not coordinated.
type Service struct {
	extractor domain.Extractor
	store     domain.Store
	chunker   domain.Chunker
	gateway   *embedding.Gateway
	composer  *answer.Composer
	differ    *diff.Differ
	previews  *preview.Builder
}

// New creates a Service.
func New(c Components) (*Service, error) {
	if c.Store == nil || c.Chunker == nil || c.Gateway == nil {
		return nil, errors.New("service needs a store, a chunker and an embedding gateway")
	}
	s := &Service{
		extractor: c.Extractor,
		store:     c.Store,
		chunker:   c.Chunker,
		gateway:   c.Gateway,
		composer:  c.Composer,
		differ:    c.Differ,
		previews:  c.Previews,
	}
	if s.composer == nil {
		s.composer = answer.NewComposer(nil, answer.DefaultOptions())
	}
	if s.differ == nil {
		s.differ = diff.New()
	}
	if s.previews == nil {
		s.previews = preview.NewBuilder(nil)
	}
	return s, nil
}

// AddFiles extracts every file matching patterns and stores it. Patterns
// without glob matches are taken as literal paths. Files that exist but
// cannot be parsed are stored with empty text.
func (s *Service) AddFiles(ctx context.Context, patterns []string) ([]domain.Document, error) {
	if s.extractor == nil {
		return nil, errors.New("no extractor configured")
	}
	var paths []string
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				continue
			}
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to add", domain.ErrInvalidInput)
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := s.extractor.Extract(ctx, p)
		if err != nil {
			return docs, err
		}
		if err := s.store.PutDocument(ctx, doc); err != nil {
			return docs, fmt.Errorf("storing %s: %w", doc.Name, err)
		}
		logger.Info("added %s (%s, %d bytes)", doc.Name, doc.Type, doc.Size)
		docs = append(docs, doc)
	}
	return docs, nil
}

// Documents lists stored documents.
func (s *Service) Documents(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Document loads one stored document.
func (s *Service) Document(ctx context.Context, id string) (domain.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// Preview summarises a document's headings and opening sentences.
func (s *Service) Preview(doc domain.Document) preview.Preview {
	return s.previews.Build(doc.Text)
}

// Index chunks the given documents, embeds every chunk that has no vector yet
// and stores the result. Chunks whose id is already stored keep their stored
// embedding unless it came from a different embedding backend. progress
// receives the completed fraction: chunking fills the first half, embedding
// the second.
func (s *Service) Index(ctx context.Context, documentIDs []string, progress embedding.Progress) ([]domain.Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, fmt.Errorf("%w: no documents selected", domain.ErrInvalidInput)
	}
	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
	}

	stored, err := s.store.ChunksByDocuments(ctx, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	known := make(map[string]domain.Chunk, len(stored))
	for _, c := range stored {
		if c.Embedded() {
			known[c.ID] = c
		}
	}

	var chunks []domain.Chunk
	for i, id := range documentIDs {
		doc, err := s.store.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		docChunks := s.chunker.Chunk(doc)
		for j := range docChunks {
			if prev, ok := known[docChunks[j].ID]; ok {
				docChunks[j].Embedding = prev.Embedding
				docChunks[j].EmbeddedBy = prev.EmbeddedBy
			}
		}
		if err := s.store.PutChunks(ctx, docChunks); err != nil {
			return nil, fmt.Errorf("storing chunks of %s: %w", doc.Name, err)
		}
		logger.Debug("%s: %d chunks", doc.Name, len(docChunks))
		chunks = append(chunks, docChunks...)
		report(0.5 * float64(i+1) / float64(len(documentIDs)))
	}

	embedded, err := s.gateway.EmbedChunks(ctx, chunks, func(f float64) { report(0.5 + 0.5*f) })
	if err != nil {
		return nil, err
	}
	if err := s.store.PutChunks(ctx, embedded); err != nil {
		return nil, fmt.Errorf("storing embeddings: %w", err)
	}
	report(1)
	return embedded, nil
}

// Ask indexes the selected documents and answers question from them. When
// nothing relevant is found the answer holds the single no-match sentence.
func (s *Service) Ask(ctx context.Context, question string, documentIDs []string, progress embedding.Progress) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	chunks, err := s.Index(ctx, documentIDs, progress)
	if err != nil {
		return domain.Answer{}, err
	}
	query, err := s.gateway.EmbedQuery(ctx, question)
	if err != nil {
		return domain.Answer{}, err
	}
	ranked := ranker.Rank(query, chunks)
	if len(ranked) > 0 {
		logger.Debug("best chunk %s scored %.3f", ranked[0].Chunk.ID, ranked[0].Score)
	}
	return domain.Answer{
		Question:  question,
		Sentences: s.composer.Compose(question, chunks, ranked),
	}, nil
}

// Compare splits both texts into clauses and reports the differences.
func (s *Service) Compare(textA, textB string, g diff.Granularity) []domain.DiffUnit {
	return s.differ.Diff(clause.Detect(textA), clause.Detect(textB), g)
}

// CompareFiles extracts two files without storing them and compares them.
func (s *Service) CompareFiles(ctx context.Context, pathA, pathB string, g diff.Granularity) ([]domain.DiffUnit, error) {
	if s.extractor == nil {
		return nil, errors.New("no extractor configured")
	}
	a, err := s.extractor.Extract(ctx, pathA)
	if err != nil {
		return nil, err
	}
	b, err := s.extractor.Extract(ctx, pathB)
	if err != nil {
		return nil, err
	}
	return s.Compare(a.Text, b.Text, g), nil
}

// Source returns the document text a citation points at. The span is
// clamped to the document.
func (s *Service) Source(ctx context.Context, c domain.Citation) (string, error) {
	doc, err := s.store.GetDocument(ctx, c.DocumentID)
	if err != nil {
		return "", err
	}
	runes := []rune(doc.Text)
	start := min(max(c.Start, 0), len(runes))
	end := min(max(c.End, start), len(runes))
	return string(runes[start:end]), nil
}

// DocumentNames maps stored document ids to their display names.
func (s *Service) DocumentNames(ctx context.Context) (map[string]string, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}

// Reset removes every stored document and chunk.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Clear(ctx)
}
