// Package embedding resolves vectors for chunks and questions through a
// lazily initialised embedding backend.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/logger"
)

// Progress receives the completed fraction (0..1) after each embedded item.
type Progress func(fraction float64)

// Gateway wraps an embedding backend that is constructed on first use.
// Concurrent initialisers converge on a single backend instance; a failed
// initialisation leaves the gateway uninitialised so a later call may retry.
type Gateway struct {
	factory Factory

	mu       sync.Mutex
	embedder Embedder
}

// NewGateway creates a gateway that builds its backend with factory.
func NewGateway(factory Factory) *Gateway {
	return &Gateway{factory: factory}
}

// Initialize constructs the backend if it is not ready yet.
func (g *Gateway) Initialize(ctx context.Context) error {
	_, err := g.ready(ctx)
	return err
}

// Ready reports whether the backend has been constructed.
func (g *Gateway) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.embedder != nil
}

func (g *Gateway) ready(ctx context.Context) (Embedder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.embedder != nil {
		return g.embedder, nil
	}
	if g.factory == nil {
		return nil, fmt.Errorf("%w: no embedder configured", domain.ErrEmbeddingUnavailable)
	}
	e, err := g.factory(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	logger.Debug("embedding backend %q ready (dimension %d)", e.Name(), e.Dimension())
	g.embedder = e
	return e, nil
}

// Embed returns one vector per text.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e, err := g.ready(ctx)
	if err != nil {
		return nil, err
	}
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: %d vectors for %d texts", domain.ErrEmbeddingUnavailable, len(vecs), len(texts))
	}
	return vecs, nil
}

// EmbedQuery returns the vector for a single question.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vecs, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Identity initialises the backend if needed and returns its Identity.
func (g *Gateway) Identity(ctx context.Context) (string, error) {
	e, err := g.ready(ctx)
	if err != nil {
		return "", err
	}
	return Identity(e), nil
}

// EmbedChunks returns a copy of chunks in which every chunk carries a vector
// from the current backend. A stored vector is kept only when its EmbeddedBy
// matches the backend identity and its length matches the backend dimension;
// any other vector is discarded and recomputed. progress, when set, is called
// after each item in order. Any backend failure aborts the pass and no chunks
// are returned.
func (g *Gateway) EmbedChunks(ctx context.Context, chunks []domain.Chunk, progress Progress) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		out[i] = c
	}
	if len(out) == 0 {
		return out, nil
	}
	e, err := g.ready(ctx)
	if err != nil {
		return nil, err
	}
	identity := Identity(e)

	embedded, stale := 0, 0
	for i := range out {
		if out[i].Embedded() && !current(out[i], identity, e.Dimension()) {
			out[i].Embedding = nil
			stale++
		}
		if !out[i].Embedded() {
			vec, err := g.EmbedQuery(ctx, out[i].Text)
			if err != nil {
				return nil, fmt.Errorf("embedding chunk %s: %w", out[i].ID, err)
			}
			out[i].Embedding = vec
			out[i].EmbeddedBy = identity
			embedded++
		}
		if progress != nil {
			progress(float64(i+1) / float64(len(out)))
		}
	}
	if stale > 0 {
		logger.Info("re-embedded %d chunks produced by another embedder", stale)
	}
	logger.Debug("embedded %d of %d chunks", embedded, len(out))
	return out, nil
}

// current reports whether c's vector belongs to the backend's space. A zero
// dimension means the backend has not reported one yet.
func current(c domain.Chunk, identity string, dimension int) bool {
	if c.EmbeddedBy != identity {
		return false
	}
	return dimension == 0 || len(c.Embedding) == dimension
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}
