package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"suggest/config"
	"suggest/internal/adapter/llm"
	"suggest/internal/adapter/retriever"
	"suggest/internal/adapter/store"
	"suggest/internal/domain"
	"suggest/internal/port"
	"suggest/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank files and prompts against a free-text request",
	Long: `suggest indexes a project's files and reusable prompts, then ranks
them against a free-text request through a multi-stage pipeline:
keyword extraction, relevance scoring, fuzzy expansion, composite
ranking, and an optional AI reranking stage with strict fallbacks.

Example usage:
  suggest index .                        # Index current directory
  suggest files -q "implement auth"      # Rank files for a request
  suggest prompts suggest -q "add tests" # Rank stored prompts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = newLogger(cfg.Logging.Level)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./suggest.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory (default is current directory)")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore opens the project item database, failing when no index
// exists yet.
func openStore() (*store.BoltStore, error) {
	dbPath := config.StoreDBPath(rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no index found at %s, run 'suggest index' first", dbPath)
	}
	return store.NewBoltStore(dbPath)
}

// newService wires the suggestion pipeline. The model gateway is only
// attached when an API key is present; without one the AI stages
// decline and the composite ordering is served.
func newService(st *store.BoltStore) *usecase.SuggestService {
	deps := usecase.SuggestDeps{
		Repo:           st,
		FileSearcher:   retriever.NewTrigramSearcher(st, retriever.KindFiles),
		PromptSearcher: retriever.NewTrigramSearcher(st, retriever.KindPrompts),
		Config:         cfg,
		Logger:         logger,
	}

	if key := os.Getenv(cfg.Model.APIKeyEnv); key != "" {
		var gateway port.ModelGateway
		if cfg.Model.BaseURL != "" {
			gateway = llm.NewOpenAICompatibleGateway(key, cfg.Model.BaseURL)
		} else {
			gateway = llm.NewOpenAIGateway(key)
		}
		deps.Gateway = gateway
		deps.Tiers = tierResolver()
	} else {
		logger.Warn("no model API key set, AI stages disabled", "env", cfg.Model.APIKeyEnv)
	}

	return usecase.NewSuggestService(deps)
}

func tierResolver() port.TierResolver {
	tiers := llm.DefaultTiers()
	for name, tc := range cfg.Model.Tiers {
		tiers[domain.ModelTier(name)] = port.ModelOptions{
			Provider:    cfg.Model.Provider,
			Model:       tc.Model,
			Temperature: tc.Temperature,
			MaxTokens:   tc.MaxTokens,
		}
	}
	return llm.NewStaticTierResolver(tiers)
}
