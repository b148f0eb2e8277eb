package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"suggest/internal/adapter/ranker"
	"suggest/internal/adapter/scorer"
	"suggest/internal/domain"
)

// Config holds all configuration for the suggestion tool.
type Config struct {
	Index      IndexConfig               `yaml:"index"`
	Scoring    ScoringConfig             `yaml:"scoring"`
	Ranking    RankingConfig             `yaml:"ranking"`
	Strategies map[string]StrategyConfig `yaml:"strategies"`
	Fetch      FetchConfig               `yaml:"fetch"`
	Model      ModelConfig               `yaml:"model"`
	Logging    LoggingConfig             `yaml:"logging"`
}

// IndexConfig holds project indexing configuration.
type IndexConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ScoringConfig holds relevance scorer configuration.
type ScoringConfig struct {
	PromptWeights scorer.Weights `yaml:"prompt_weights"`
	FileWeights   scorer.Weights `yaml:"file_weights"`
	MinScore      float64        `yaml:"min_score"`
}

// RankingConfig holds composite ranker configuration.
type RankingConfig struct {
	Blend      ranker.Blend `yaml:"blend"`
	FuzzyLimit int          `yaml:"fuzzy_limit"`
}

// StrategyConfig is one named suggestion preset.
type StrategyConfig struct {
	MaxPreFilterItems int              `yaml:"max_pre_filter_items"`
	MaxAIItems        int              `yaml:"max_ai_items"`
	UseAI             bool             `yaml:"use_ai"`
	ModelTier         domain.ModelTier `yaml:"model_tier"`
	CompactLevel      int              `yaml:"compact_level"`
}

// FetchConfig holds partial content fetch defaults.
type FetchConfig struct {
	LineCount           int      `yaml:"line_count"`
	MaxTotalFiles       int      `yaml:"max_total_files"`
	MaxFilesPerDir      int      `yaml:"max_files_per_dir"`
	MaxFileSize         int64    `yaml:"max_file_size"`
	IncludeExtensions   []string `yaml:"include_extensions"`
	ExcludeExtensions   []string `yaml:"exclude_extensions"`
	LargeProjectMinSize int      `yaml:"large_project_min_size"`
}

// ModelConfig holds model provider configuration.
type ModelConfig struct {
	Provider  string                `yaml:"provider"`
	APIKeyEnv string                `yaml:"api_key_env"`
	BaseURL   string                `yaml:"base_url"`
	Tiers     map[string]TierConfig `yaml:"tiers"`
}

// TierConfig maps a logical tier name to concrete model settings.
type TierConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes: []string{"**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.tsx", "**/*.java", "**/*.rs", "**/*.rb", "**/*.sql", "**/*.md", "**/*.yaml", "**/*.yml", "**/*.json"},
			Excludes: []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/__pycache__/**", "**/*.min.js"},
		},
		Scoring: ScoringConfig{
			PromptWeights: scorer.DefaultPromptWeights(),
			FileWeights:   scorer.DefaultFileWeights(),
			MinScore:      0.1,
		},
		Ranking: RankingConfig{
			Blend:      ranker.DefaultBlend(),
			FuzzyLimit: 20,
		},
		Strategies: map[string]StrategyConfig{
			string(domain.StrategyFast): {
				MaxPreFilterItems: 30,
				MaxAIItems:        0,
				UseAI:             false,
				ModelTier:         domain.TierMedium,
				CompactLevel:      2,
			},
			string(domain.StrategyBalanced): {
				MaxPreFilterItems: 60,
				MaxAIItems:        20,
				UseAI:             true,
				ModelTier:         domain.TierMedium,
				CompactLevel:      1,
			},
			string(domain.StrategyThorough): {
				MaxPreFilterItems: 120,
				MaxAIItems:        40,
				UseAI:             true,
				ModelTier:         domain.TierHigh,
				CompactLevel:      0,
			},
		},
		Fetch: FetchConfig{
			LineCount:           50,
			MaxTotalFiles:       30,
			MaxFilesPerDir:      10,
			MaxFileSize:         1 << 20,
			IncludeExtensions:   nil,
			ExcludeExtensions:   []string{".lock", ".log", ".tmp", ".min.js"},
			LargeProjectMinSize: 200,
		},
		Model: ModelConfig{
			Provider:  "openai",
			APIKeyEnv: "OPENAI_API_KEY",
			Tiers: map[string]TierConfig{
				string(domain.TierMedium): {Model: "gpt-4o-mini", Temperature: 0.2, MaxTokens: 2048},
				string(domain.TierHigh):   {Model: "gpt-4o", Temperature: 0.1, MaxTokens: 4096},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Strategy returns the preset for a strategy name, defaulting to balanced.
func (c *Config) Strategy(name domain.Strategy) StrategyConfig {
	if s, ok := c.Strategies[string(name)]; ok {
		return s
	}
	return c.Strategies[string(domain.StrategyBalanced)]
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for suggest.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "suggest.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".suggest", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the item database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".suggest", "items.db")
}

// EnsureStateDir ensures the .suggest directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".suggest"), 0755)
}
