// Package cli implements the docdup command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docdup-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/docdup-cli/internal/connectors/github"
	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose  bool
	flagDataDir  string
	flagGitHub   string
	flagToken    string
	flagInclude  []string
	flagExclude  []string
	flagProvider string
	flagModel    string
	flagBaseURL  string
	flagAPIKey   string
)

var rootCmd = &cobra.Command{
	Use:   "docdup",
	Short: "Find and merge near-duplicate documents",
	Long: `docdup computes pairwise similarity across a document corpus, groups
near-duplicates into clusters, and merges overlapping documents
section by section.

Lexical comparison works offline; semantic comparison uses an
embedding provider (Ollama or OpenAI) and composite combines both.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.docdup)")
	rootCmd.PersistentFlags().StringVar(&flagGitHub, "github", "", "load from a GitHub repository (owner/repo) instead of a local path")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "GitHub access token (or set GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringSliceVar(&flagInclude, "include", nil, "glob patterns for files to load")
	rootCmd.PersistentFlags().StringSliceVar(&flagExclude, "exclude", nil, "glob patterns for files to skip")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "embedding provider: ollama or openai")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "embedding model name")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "embedding provider base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "embedding provider API key (or set OPENAI_API_KEY)")
}

// Execute runs the CLI. The version string comes from the build.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// openConfig opens the TOML config store. Flags override stored values.
func openConfig() (*file.ConfigStore, error) {
	cfg, err := file.NewConfigStore(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return cfg, nil
}

// buildLoader constructs the document loader from flags and config.
// A local path argument and --github are mutually exclusive.
func buildLoader(cmd *cobra.Command, path string, cfg *file.ConfigStore) (driven.DocumentLoader, error) {
	include := flagInclude
	if len(include) == 0 {
		include = cfg.GetStringSlice("loader.include")
	}
	exclude := flagExclude
	if len(exclude) == 0 {
		exclude = cfg.GetStringSlice("loader.exclude")
	}

	if flagGitHub != "" {
		if path != "" && path != "." {
			return nil, fmt.Errorf("cannot combine --github with a local path: %w", domain.ErrInvalidConfig)
		}
		owner, repo, ok := splitRepo(flagGitHub)
		if !ok {
			return nil, fmt.Errorf("--github expects owner/repo, got %q: %w", flagGitHub, domain.ErrInvalidConfig)
		}
		token := flagToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		return github.NewLoader(cmd.Context(), github.Config{
			Owner:   owner,
			Repo:    repo,
			Token:   token,
			Include: include,
		})
	}

	if path == "" {
		path = "."
	}
	return filesystem.NewLoader(filesystem.Config{
		Root:    path,
		Include: include,
		Exclude: exclude,
	})
}

// buildEmbedder constructs the embedding service from flags and config.
func buildEmbedder(cfg *file.ConfigStore) (driven.EmbeddingService, error) {
	provider := flagProvider
	if provider == "" {
		provider = cfg.GetString("embedding.provider")
	}
	if provider == "" {
		provider = "ollama"
	}

	model := flagModel
	if model == "" {
		model = cfg.GetString("embedding.model")
	}
	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = cfg.GetString("embedding.base_url")
	}

	var embedder driven.EmbeddingService
	switch provider {
	case "ollama":
		embedder = ollama.NewEmbeddingService(ollama.Config{
			BaseURL: baseURL,
			Model:   model,
		})
	case "openai":
		apiKey := flagAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
		if err != nil {
			return nil, err
		}
		embedder = svc
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", provider, domain.ErrInvalidConfig)
	}

	if rps := cfg.GetFloat("embedding.requests_per_second"); rps > 0 {
		embedder = ratelimit.Wrap(embedder, ratelimit.Config{RequestsPerSecond: rps})
	}
	return embedder, nil
}

// buildCalculator constructs the similarity calculator for a technique.
// The lexical calculator doubles as the fallback when a semantic provider
// is unavailable; fallback is nil for purely lexical runs.
func buildCalculator(technique, algorithm string, workers int, cfg *file.ConfigStore) (calc, fallback driving.SimilarityCalculator, err error) {
	if technique == "" {
		technique = cfg.GetString("similarity.technique")
	}
	if technique == "" {
		technique = string(domain.TechniqueLexical)
	}
	if algorithm == "" {
		algorithm = cfg.GetString("similarity.algorithm")
	}

	var lexicalOpts []services.LexicalOption
	if algorithm != "" {
		lexicalOpts = append(lexicalOpts, services.WithLexicalAlgorithm(services.LexicalAlgorithm(algorithm)))
	}
	if workers > 0 {
		lexicalOpts = append(lexicalOpts, services.WithLexicalWorkers(workers))
	}
	lexical := services.NewLexicalCalculator(lexicalOpts...)

	switch domain.Technique(technique) {
	case domain.TechniqueLexical:
		return lexical, nil, nil
	case domain.TechniqueSemantic, domain.TechniqueComposite:
		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return nil, nil, err
		}
		semantic := services.NewSemanticCalculator(embedder)
		if domain.Technique(technique) == domain.TechniqueComposite {
			return services.NewCompositeCalculator(lexical, semantic), nil, nil
		}
		return semantic, lexical, nil
	default:
		return nil, nil, fmt.Errorf("unknown technique %q: %w", technique, domain.ErrInvalidConfig)
	}
}

// splitRepo parses "owner/repo".
func splitRepo(s string) (owner, repo string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			owner, repo = s[:i], s[i+1:]
			return owner, repo, owner != "" && repo != ""
		}
	}
	return "", "", false
}

// openReportStore opens the SQLite report store. Failure to open storage
// degrades to no persistence rather than blocking the analysis.
func openReportStore() driven.ReportStore {
	store, err := sqlite.NewStore(dataSubdir())
	if err != nil {
		logger.Warn("Report store unavailable: %v", err)
		return nil
	}
	return store
}

func dataSubdir() string {
	if flagDataDir == "" {
		return ""
	}
	return flagDataDir
}
