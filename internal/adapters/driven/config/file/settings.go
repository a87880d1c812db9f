// Package file provides TOML-backed settings for the CLI.
//
// Settings live in config.toml under the data directory. A missing
// file yields the defaults; a saved file round-trips the full struct.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultDirName is the data directory under the user's home.
const DefaultDirName = ".planora"

// Settings is the full CLI configuration.
type Settings struct {
	Source    SourceSettings    `toml:"source"`
	Registry  RegistrySettings  `toml:"registry"`
	Index     IndexSettings     `toml:"index"`
	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`
	Answer    AnswerSettings    `toml:"answer"`
}

// SourceSettings configures the document source.
type SourceSettings struct {
	// Dir is the directory holding the source documents.
	Dir string `toml:"dir"`

	// Patterns are the include globs relative to Dir.
	Patterns []string `toml:"patterns"`

	// ChunkSize is the chunk size in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between chunks in characters.
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RegistrySettings configures the document registry.
type RegistrySettings struct {
	// Backend selects the registry implementation: "file" or "sqlite".
	Backend string `toml:"backend"`
}

// IndexSettings configures the external index.
type IndexSettings struct {
	// Backend selects the index implementation: "chroma" or "memory".
	Backend string `toml:"backend"`

	// BaseURL is the chroma server base URL.
	BaseURL string `toml:"base_url"`

	// Collection is the chroma collection name.
	Collection string `toml:"collection"`

	// RequestsPerSecond caps the chroma request rate.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL overrides the API base URL when set.
	BaseURL string `toml:"base_url"`
}

// LLMSettings configures the generator.
type LLMSettings struct {
	// Model is the chat model name.
	Model string `toml:"model"`

	// BaseURL overrides the API base URL when set.
	BaseURL string `toml:"base_url"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`
}

// AnswerSettings configures retrieval for the answer pipeline.
type AnswerSettings struct {
	// TopK is the number of excerpts requested from the index.
	TopK int `toml:"top_k"`

	// MaxDistance drops excerpts above this distance; zero disables
	// the filter.
	MaxDistance float64 `toml:"max_distance"`

	// PerPageCap limits excerpts kept per document page.
	PerPageCap int `toml:"per_page_cap"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			Dir:          "docs",
			Patterns:     []string{"**/*.txt", "**/*.md"},
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Registry: RegistrySettings{
			Backend: "file",
		},
		Index: IndexSettings{
			Backend:           "chroma",
			BaseURL:           "http://localhost:8000",
			Collection:        "planning_docs",
			RequestsPerSecond: 10,
		},
		Embedding: EmbeddingSettings{
			Model: "text-embedding-3-small",
		},
		LLM: LLMSettings{
			Model: "gpt-4o-mini",
		},
		Answer: AnswerSettings{
			TopK:       5,
			PerPageCap: 2,
		},
	}
}

// Store loads and saves Settings under a data directory.
type Store struct {
	dir      string
	filePath string
}

// NewStore creates a settings store rooted at dataDir.
// If dataDir is empty, ~/.planora is used.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, DefaultDirName)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &Store{
		dir:      dataDir,
		filePath: filepath.Join(dataDir, "config.toml"),
	}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the settings file, applying defaults for anything unset.
// A missing file is not an error.
func (s *Store) Load() (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings file.
func (s *Store) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
