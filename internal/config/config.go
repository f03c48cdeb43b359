package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/RussGuo/Legata/internal/domain"
)

// HashingEmbedderConfig configures the offline feature-hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                 `yaml:"type"`
	Hashing *HashingEmbedderConfig `yaml:"hashing,omitempty"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
	Gemini  *GeminiEmbedderConfig  `yaml:"gemini,omitempty"`
}

// SegmenterConfig selects the sentence splitting strategy.
type SegmenterConfig struct {
	Type   string `yaml:"type"`
	Locale string `yaml:"locale"`
}

// Tag returns the parsed locale.
func (c SegmenterConfig) Tag() (language.Tag, error) {
	if c.Locale == "" {
		return language.English, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: locale %q: %w", domain.ErrInvalidInput, c.Locale, err)
	}
	return tag, nil
}

// ChunkerConfig configures how documents are split into chunks. OverlapChars
// is a pointer so that an explicit 0 disables overlap while an absent key
// takes the default.
type ChunkerConfig struct {
	WindowChars  int  `yaml:"window_chars"`
	OverlapChars *int `yaml:"overlap_chars"`
}

// Overlap returns the configured overlap, or the default when unset.
func (c ChunkerConfig) Overlap() int {
	if c.OverlapChars == nil {
		return defaultOverlapChars
	}
	return *c.OverlapChars
}

// SQLiteConfig locates the SQLite database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects and configures document persistence.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// AnswerConfig tunes answer composition.
type AnswerConfig struct {
	MinSimilarity    float64 `yaml:"min_similarity"`
	MaxChunks        int     `yaml:"max_chunks"`
	MaxSentences     int     `yaml:"max_sentences"`
	MinSentenceChars int     `yaml:"min_sentence_chars"`
}

// DiffConfig configures clause comparison.
type DiffConfig struct {
	Granularity   string `yaml:"granularity"`
	TruncateChars int    `yaml:"truncate_chars"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Store     StoreConfig     `yaml:"store"`
	Answer    AnswerConfig    `yaml:"answer"`
	Diff      DiffConfig      `yaml:"diff"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./legata.yaml first, then ~/.config/legata/config.yaml.
// If neither exists, it writes defaults to ~/.config/legata/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "legata.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid setting.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hashing", "openai", "gemini":
	default:
		return fmt.Errorf("%w: embedder type %q", domain.ErrUnsupportedType, c.Embedder.Type)
	}
	switch c.Segmenter.Type {
	case "auto", "unicode", "regex":
	default:
		return fmt.Errorf("%w: segmenter type %q", domain.ErrUnsupportedType, c.Segmenter.Type)
	}
	if _, err := c.Segmenter.Tag(); err != nil {
		return err
	}
	switch c.Store.Type {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: store type %q", domain.ErrUnsupportedType, c.Store.Type)
	}
	switch c.Diff.Granularity {
	case "sentence", "token":
	default:
		return fmt.Errorf("%w: diff granularity %q", domain.ErrInvalidInput, c.Diff.Granularity)
	}
	if overlap := c.Chunker.Overlap(); overlap < 0 || overlap >= c.Chunker.WindowChars {
		return fmt.Errorf("%w: chunker overlap %d must be in [0, window %d)",
			domain.ErrInvalidInput, overlap, c.Chunker.WindowChars)
	}
	if c.Answer.MinSimilarity < 0 || c.Answer.MinSimilarity > 1 {
		return fmt.Errorf("%w: answer min_similarity %v outside [0, 1]", domain.ErrInvalidInput, c.Answer.MinSimilarity)
	}
	return nil
}

const defaultOverlapChars = 200

func intPtr(n int) *int { return &n }

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "legata", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:  EmbedderConfig{Type: "hashing", Hashing: &HashingEmbedderConfig{Dimension: 512}},
		Segmenter: SegmenterConfig{Type: "auto", Locale: "en"},
		Chunker:   ChunkerConfig{WindowChars: 900, OverlapChars: intPtr(defaultOverlapChars)},
		Store:     StoreConfig{Type: "sqlite", SQLite: &SQLiteConfig{}},
		Answer:    AnswerConfig{MinSimilarity: 0.25, MaxChunks: 6, MaxSentences: 5, MinSentenceChars: 30},
		Diff:      DiffConfig{Granularity: "sentence", TruncateChars: 240},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Segmenter.Type == "" {
		cfg.Segmenter.Type = def.Segmenter.Type
	}
	if cfg.Segmenter.Locale == "" {
		cfg.Segmenter.Locale = def.Segmenter.Locale
	}
	if cfg.Chunker.WindowChars == 0 {
		cfg.Chunker.WindowChars = def.Chunker.WindowChars
	}
	if cfg.Chunker.OverlapChars == nil {
		cfg.Chunker.OverlapChars = def.Chunker.OverlapChars
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = def.Store.Type
	}
	if cfg.Answer.MinSimilarity == 0 {
		cfg.Answer.MinSimilarity = def.Answer.MinSimilarity
	}
	if cfg.Answer.MaxChunks == 0 {
		cfg.Answer.MaxChunks = def.Answer.MaxChunks
	}
	if cfg.Answer.MaxSentences == 0 {
		cfg.Answer.MaxSentences = def.Answer.MaxSentences
	}
	if cfg.Answer.MinSentenceChars == 0 {
		cfg.Answer.MinSentenceChars = def.Answer.MinSentenceChars
	}
	if cfg.Diff.Granularity == "" {
		cfg.Diff.Granularity = def.Diff.Granularity
	}
	if cfg.Diff.TruncateChars == 0 {
		cfg.Diff.TruncateChars = def.Diff.TruncateChars
	}

	switch cfg.Embedder.Type {
	case "hashing":
		if cfg.Embedder.Hashing == nil {
			cfg.Embedder.Hashing = &HashingEmbedderConfig{}
		}
		if cfg.Embedder.Hashing.Dimension == 0 {
			cfg.Embedder.Hashing.Dimension = 512
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	case "gemini":
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		if cfg.Embedder.Gemini.APIKeyEnv == "" {
			cfg.Embedder.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "text-embedding-004"
		}
	}
	if cfg.Store.Type == "sqlite" && cfg.Store.SQLite == nil {
		cfg.Store.SQLite = &SQLiteConfig{}
	}
}
