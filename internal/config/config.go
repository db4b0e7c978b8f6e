// Package config loads the application configuration from an optional YAML
// file plus environment overrides. Credentials are validated once at
// startup; a missing key is fatal there, never a per-call error.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in the index, embedder, and llm sections.
const (
	IndexLocal  = "local"
	IndexQdrant = "qdrant"

	ServiceOllama = "ollama"
	ServiceGemini = "gemini"
)

// ConfigError reports an invalid or incomplete configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// IndexConfig selects and configures the similarity-index backend.
type IndexConfig struct {
	Backend      string `yaml:"backend"`
	Path         string `yaml:"path"`
	Collection   string `yaml:"collection"`
	QdrantURL    string `yaml:"qdrant_url"`
	QdrantAPIKey string `yaml:"qdrant_api_key"`
}

// ServiceConfig selects an external model service and its model.
type ServiceConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model"`
	OllamaURL string `yaml:"ollama_url"`
}

// Config is the root application configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	Recursive bool   `yaml:"recursive"`
	BatchSize int    `yaml:"batch_size"`

	NResults        int     `yaml:"n_results"`
	Temperature     float32 `yaml:"temperature"`
	MaxContextChars int     `yaml:"max_context_chars"`

	Index    IndexConfig   `yaml:"index"`
	Embedder ServiceConfig `yaml:"embedder"`
	LLM      ServiceConfig `yaml:"llm"`

	// GeminiAPIKey comes from the environment only, never the file.
	GeminiAPIKey string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:         "./data/wikipedia",
		Recursive:       true,
		BatchSize:       32,
		NResults:        3,
		Temperature:     0.7,
		MaxContextChars: 800,
		Index: IndexConfig{
			Backend:    IndexLocal,
			Path:       "./.wikirag/index.db",
			Collection: "wikipedia_articles",
			QdrantURL:  "http://localhost:6333",
		},
		Embedder: ServiceConfig{
			Backend:   ServiceOllama,
			Model:     "nomic-embed-text",
			OllamaURL: "http://localhost:11434",
		},
		LLM: ServiceConfig{
			Backend:   ServiceGemini,
			Model:     "gemini-2.5-flash",
			OllamaURL: "http://localhost:11434",
		},
	}
}

// Load reads the config at path over the defaults. A missing file is not an
// error: the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Reason: "parse " + path + ": " + err.Error()}
	}
	applyEnv(cfg)
	return cfg, nil
}

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = "wikirag.yaml"

// applyEnv layers environment variables over the file. GOOGLE_API_KEY is
// accepted as an alias for GEMINI_API_KEY.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Embedder.OllamaURL = v
		cfg.LLM.OllamaURL = v
	}
	if v := os.Getenv("WIKIRAG_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
}

// Validate checks the configuration at startup.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case IndexLocal, IndexQdrant:
	default:
		return &ConfigError{Reason: "unknown index backend " + c.Index.Backend}
	}
	switch c.Embedder.Backend {
	case ServiceOllama, ServiceGemini:
	default:
		return &ConfigError{Reason: "unknown embedder backend " + c.Embedder.Backend}
	}
	switch c.LLM.Backend {
	case ServiceOllama, ServiceGemini:
	default:
		return &ConfigError{Reason: "unknown llm backend " + c.LLM.Backend}
	}

	needsKey := c.LLM.Backend == ServiceGemini || c.Embedder.Backend == ServiceGemini
	if needsKey && c.GeminiAPIKey == "" {
		return &ConfigError{Reason: "GEMINI_API_KEY is not set (put it in the environment or a .env file)"}
	}

	if c.Temperature < 0 || c.Temperature > 1 {
		return &ConfigError{Reason: "temperature must be in [0, 1]"}
	}
	if c.NResults < 1 {
		return &ConfigError{Reason: "n_results must be at least 1"}
	}
	return nil
}
