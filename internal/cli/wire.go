package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RussGuo/Legata/internal/answer"
	"github.com/RussGuo/Legata/internal/chunker"
	"github.com/RussGuo/Legata/internal/config"
	"github.com/RussGuo/Legata/internal/diff"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/embedding"
	"github.com/RussGuo/Legata/internal/embedding/gemini"
	"github.com/RussGuo/Legata/internal/embedding/hashing"
	"github.com/RussGuo/Legata/internal/embedding/openai"
	"github.com/RussGuo/Legata/internal/extract"
	"github.com/RussGuo/Legata/internal/preview"
	"github.com/RussGuo/Legata/internal/segment"
	"github.com/RussGuo/Legata/internal/service"
	"github.com/RussGuo/Legata/internal/store/memory"
	"github.com/RussGuo/Legata/internal/store/sqlite"
)

// build assembles the service from cfg. The returned func releases the store
// and any embedding client.
func build(_ context.Context, cfg *config.AppConfig) (*service.Service, func() error, error) {
	seg, err := segment.Detect(cfg.Segmenter.Type)
	if err != nil {
		return nil, nil, err
	}
	locale, err := cfg.Segmenter.Tag()
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	shutdown := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	// Remote backends are built on first use; commands that never embed
	// run without credentials.
	var factory embedding.Factory
	switch cfg.Embedder.Type {
	case "hashing", "":
		dim := hashing.DefaultDimension
		if cfg.Embedder.Hashing != nil && cfg.Embedder.Hashing.Dimension > 0 {
			dim = cfg.Embedder.Hashing.Dimension
		}
		factory = embedding.Static(hashing.NewEmbedder(dim))
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, nil, fmt.Errorf("%w: openai embedder config missing", domain.ErrInvalidInput)
		}
		oc := *cfg.Embedder.OpenAI
		factory = func(context.Context) (embedding.Embedder, error) {
			return openai.NewClient(openai.Config{
				BaseURL:   oc.BaseURL,
				APIKeyEnv: oc.APIKeyEnv,
				Model:     oc.Model,
				Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
				BatchSize: oc.BatchSize,
			})
		}
	case "gemini":
		gc := config.GeminiEmbedderConfig{}
		if cfg.Embedder.Gemini != nil {
			gc = *cfg.Embedder.Gemini
		}
		factory = func(ctx context.Context) (embedding.Embedder, error) {
			client, err := gemini.NewClient(ctx, gemini.Config{APIKeyEnv: gc.APIKeyEnv, Model: gc.Model})
			if err != nil {
				return nil, err
			}
			closers = append(closers, client.Close)
			return client, nil
		}
	default:
		return nil, nil, fmt.Errorf("%w: unknown embedder: %s", domain.ErrUnsupportedType, cfg.Embedder.Type)
	}

	var st domain.Store
	switch cfg.Store.Type {
	case "memory":
		st = memory.NewStore()
	case "sqlite", "":
		path := ""
		if cfg.Store.SQLite != nil {
			path = cfg.Store.SQLite.Path
		}
		s, err := sqlite.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		st = s
	default:
		return nil, nil, fmt.Errorf("%w: unknown store: %s", domain.ErrUnsupportedType, cfg.Store.Type)
	}
	closers = append(closers, st.Close)

	svc, err := service.New(service.Components{
		Extractor: extract.New(),
		Store:     st,
		Chunker: chunker.NewSentenceChunker(
			chunker.WithWindow(cfg.Chunker.WindowChars),
			chunker.WithOverlap(cfg.Chunker.Overlap()),
			chunker.WithSegmenter(seg),
		),
		Gateway: embedding.NewGateway(factory),
		Composer: answer.NewComposer(seg, answer.Options{
			MinSimilarity:    cfg.Answer.MinSimilarity,
			MaxChunks:        cfg.Answer.MaxChunks,
			MaxSentences:     cfg.Answer.MaxSentences,
			MinSentenceChars: cfg.Answer.MinSentenceChars,
			Locale:           locale,
		}),
		Differ:   diff.New(diff.WithSegmenter(seg), diff.WithTruncate(cfg.Diff.TruncateChars)),
		Previews: preview.NewBuilder(seg),
	})
	if err != nil {
		_ = shutdown()
		return nil, nil, err
	}
	return svc, shutdown, nil
}
