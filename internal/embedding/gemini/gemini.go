// Package gemini embeds text with Google's Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-004"

// Config configures the Gemini embedder.
type Config struct {
	APIKeyEnv string
	Model     string
}

// Client embeds text through the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	name      string
	dimension int
}

// NewClient creates a Gemini embedding client. The API key is read from the
// environment variable named in cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{
		client: client,
		model:  client.EmbeddingModel(cfg.Model),
		name:   cfg.Model,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "gemini" }

// Model returns the configured embedding model.
func (c *Client) Model() string { return c.name }

// Dimension returns the dimensionality of the produced vectors, known after the first call.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns one vector per text using a single batch request.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batch := c.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := c.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", c.name, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, errors.New("gemini returned a partial batch")
	}
	out := make([][]float64, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, errors.New("empty embedding")
		}
		v := make([]float64, len(e.Values))
		for j, x := range e.Values {
			v[j] = float64(x)
		}
		out[i] = v
	}
	if c.dimension == 0 {
		c.dimension = len(out[0])
	}
	return out, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}
