// Package memory is a process-local document and chunk store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/RussGuo/Legata/internal/domain"
)

// Store keeps documents and chunks in maps guarded by a RWMutex. Values are
// copied on the way in and out so callers never share embedding slices.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	order     []string
	chunks    map[string]domain.Chunk
}

var _ domain.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

func (s *Store) PutDocument(_ context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = doc
	return nil
}

func (s *Store) GetDocument(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// ListDocuments returns documents in insertion order.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.documents[id])
	}
	return out, nil
}

func (s *Store) PutChunks(_ context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("%w: chunk without id", domain.ErrInvalidInput)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *Store) ListChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(domain.Chunk) bool { return true }), nil
}

func (s *Store) ChunksByDocuments(_ context.Context, documentIDs []string) ([]domain.Chunk, error) {
	want := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c domain.Chunk) bool {
		_, ok := want[c.DocumentID]
		return ok
	}), nil
}

// collect returns matching chunks ordered by document id and span.
func (s *Store) collect(keep func(domain.Chunk) bool) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if keep(c) {
			c.Embedding = slices.Clone(c.Embedding)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]domain.Document)
	s.order = nil
	s.chunks = make(map[string]domain.Chunk)
	return nil
}

func (s *Store) Close() error { return nil }
