package embedding

import "context"

// Embedder converts free text into fixed-length numeric vectors.
// Implementations return one vector per input, already pooled and L2-normalised.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Factory constructs an Embedder. It is invoked lazily by the Gateway.
type Factory func(ctx context.Context) (Embedder, error)

// Static returns a Factory that always yields e.
func Static(e Embedder) Factory {
	return func(context.Context) (Embedder, error) { return e, nil }
}

// Identity names the vector space e produces: the backend name, plus the
// model when the backend reports one. Vectors with different identities are
// not comparable.
func Identity(e Embedder) string {
	if m, ok := e.(interface{ Model() string }); ok && m.Model() != "" {
		return e.Name() + ":" + m.Model()
	}
	return e.Name()
}
