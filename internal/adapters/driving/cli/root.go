// Package cli implements the command-line interface. Commands are
// thin: they parse flags, call the driving ports and print results.
// Service assembly happens once in initServices.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/planora-cli/internal/adapters/driven/config/file"
	openaiembed "github.com/veldt-labs/planora-cli/internal/adapters/driven/embedding/openai"
	"github.com/veldt-labs/planora-cli/internal/adapters/driven/index/chroma"
	"github.com/veldt-labs/planora-cli/internal/adapters/driven/index/memory"
	openaillm "github.com/veldt-labs/planora-cli/internal/adapters/driven/llm/openai"
	fileregistry "github.com/veldt-labs/planora-cli/internal/adapters/driven/registry/file"
	sqliteregistry "github.com/veldt-labs/planora-cli/internal/adapters/driven/registry/sqlite"
	"github.com/veldt-labs/planora-cli/internal/adapters/driven/source/filesystem"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/planora-cli/internal/core/services"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Injected services, assembled by initServices.
var (
	syncService   driving.SyncService
	answerService driving.AnswerService

	settings     file.Settings
	hasGenerator bool
	closers      []func() error
)

var (
	dataDir string
	verbose bool

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "planora",
	Short: "Question answering over planning documents and drawings",
	Long: `Planora keeps a search index in step with a directory of planning
documents and answers questions about them, optionally combined with
the geometric objects of a drawing session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		// Pre-injected services (tests) are kept as-is.
		if syncService != nil && answerService != nil {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.planora)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// initServices assembles the adapters and core services from the
// settings file and environment.
func initServices() error {
	store, err := file.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settings, err = store.Load()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults: %v", err)
	}

	source := filesystem.New(settings.Source.Dir,
		filesystem.WithPatterns(settings.Source.Patterns),
		filesystem.WithChunkSize(settings.Source.ChunkSize),
		filesystem.WithOverlap(settings.Source.ChunkOverlap),
	)

	registry, err := newRegistry(store.Dir())
	if err != nil {
		return err
	}
	closers = append(closers, registry.Close)

	index, err := newIndex()
	if err != nil {
		return err
	}
	closers = append(closers, index.Close)

	generator, err := newGenerator()
	if err != nil {
		return err
	}
	hasGenerator = generator != nil
	if hasGenerator {
		closers = append(closers, generator.Close)
	}

	syncService = services.NewSyncReconciler(source, registry, index)

	answerOpts := []services.AnswerOption{
		services.WithTopK(settings.Answer.TopK),
		services.WithPerPageCap(settings.Answer.PerPageCap),
	}
	if settings.Answer.MaxDistance > 0 {
		answerOpts = append(answerOpts, services.WithMaxDistance(settings.Answer.MaxDistance))
	}
	answerService = services.NewAnswerOrchestrator(index, generator, answerOpts...)

	return nil
}

func newRegistry(dir string) (driven.DocumentRegistry, error) {
	switch settings.Registry.Backend {
	case "", "file":
		return fileregistry.NewRegistry(dir + "/registry.json")
	case "sqlite":
		return sqliteregistry.NewRegistry(dir + "/registry.db")
	default:
		return nil, fmt.Errorf("unknown registry backend %q", settings.Registry.Backend)
	}
}

func newIndex() (driven.ExternalIndex, error) {
	switch settings.Index.Backend {
	case "", "chroma":
		return chroma.NewIndex(context.Background(), chroma.Config{
			BaseURL:           settings.Index.BaseURL,
			Collection:        settings.Index.Collection,
			RequestsPerSecond: settings.Index.RequestsPerSecond,
		})
	case "memory":
		embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding service: %w", err)
		}
		closers = append(closers, embedder.Close)
		return memory.NewIndex(embedder), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", settings.Index.Backend)
	}
}

// newGenerator builds the generator, or returns nil when no API key is
// configured. Sync-only use works without one; ask reports it missing.
func newGenerator() (driven.Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil
	}
	return openaillm.NewGenerator(openaillm.Config{
		APIKey:      apiKey,
		BaseURL:     settings.LLM.BaseURL,
		Model:       settings.LLM.Model,
		Temperature: settings.LLM.Temperature,
	})
}

func closeServices() {
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Debug("Close failed: %v", err)
		}
	}
	closers = nil
}
