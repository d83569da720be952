package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mergevet/mergevet/internal/llm"
)

// DefaultFileName is the config file looked up in the repository root.
const DefaultFileName = ".mergevet.yaml"

// Config is the effective configuration, merged from defaults, the
// YAML file, and environment variables, in that order.
type Config struct {
	LLM             LLMConfig    `yaml:"llm"`
	CriticalPaths   []string     `yaml:"critical_paths"`
	ExcludePatterns []string     `yaml:"exclude_patterns"`
	Cache           CacheConfig  `yaml:"cache"`
	Review          ReviewConfig `yaml:"review"`
	Output          OutputConfig `yaml:"output"`
}

// LLMConfig selects and authenticates the model provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"MERGEVET_PROVIDER, overwrite"`
	Model       string  `yaml:"model" env:"MERGEVET_MODEL, overwrite"`
	APIKey      string  `yaml:"api_key" env:"MERGEVET_API_KEY, overwrite"`
	BaseURL     string  `yaml:"base_url" env:"MERGEVET_BASE_URL, overwrite"`
	Temperature float64 `yaml:"temperature" env:"MERGEVET_TEMPERATURE, overwrite"`
}

// CacheConfig controls the project-context cache and the optional
// completion cache.
type CacheConfig struct {
	Dir          string        `yaml:"dir" env:"MERGEVET_CACHE_DIR, overwrite"`
	TTL          time.Duration `yaml:"ttl" env:"MERGEVET_CACHE_TTL, overwrite"`
	ForceRefresh bool          `yaml:"force_refresh" env:"MERGEVET_CACHE_FORCE_REFRESH, overwrite"`
	Completions  bool          `yaml:"completions" env:"MERGEVET_CACHE_COMPLETIONS, overwrite"`
}

// ReviewConfig tunes the review run.
type ReviewConfig struct {
	MaxFullFiles  int           `yaml:"max_full_files" env:"MERGEVET_MAX_FULL_FILES, overwrite"`
	Concurrency   int           `yaml:"concurrency" env:"MERGEVET_CONCURRENCY, overwrite"`
	Timeout       time.Duration `yaml:"timeout" env:"MERGEVET_REVIEW_TIMEOUT, overwrite"`
	RedactSecrets *bool         `yaml:"redact_secrets" env:"MERGEVET_REDACT_SECRETS, overwrite, noinit"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `yaml:"format" env:"MERGEVET_FORMAT, overwrite"`
}

// Default returns the configuration used when no file and no
// environment overrides are present. The API key has no default; it
// must come from the file or the environment.
func Default() Config {
	redact := true
	return Config{
		LLM: LLMConfig{
			Provider: string(llm.ProviderAnthropic),
		},
		ExcludePatterns: []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		Cache: CacheConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Review: ReviewConfig{
			MaxFullFiles:  20,
			Concurrency:   4,
			Timeout:       10 * time.Minute,
			RedactSecrets: &redact,
		},
		Output: OutputConfig{
			Format: "markdown",
		},
	}
}

// Load builds the effective config: defaults, then the YAML file at
// path if it exists, then environment variables. A missing file is not
// an error; a malformed one is.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return Config{}, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration errors that would make a review run
// impossible.
func (c Config) Validate() error {
	if _, err := c.ProviderConfig(); err != nil {
		return err
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured; set llm.api_key or MERGEVET_API_KEY")
	}
	switch c.Output.Format {
	case "markdown", "json", "pr-comment":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// ProviderConfig maps the LLM section onto the gateway's provider
// configuration.
func (c Config) ProviderConfig() (llm.ProviderConfig, error) {
	pc := llm.ProviderConfig{
		Provider:    llm.Provider(c.LLM.Provider),
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
	}
	if err := pc.Validate(); err != nil {
		return llm.ProviderConfig{}, err
	}
	return pc, nil
}

// RedactSecrets reports whether patches are scrubbed before they are
// sent to a provider. Defaults to true.
func (c Config) RedactSecrets() bool {
	if c.Review.RedactSecrets == nil {
		return true
	}
	return *c.Review.RedactSecrets
}

// envRef matches ${VAR} and ${VAR:-default} references in the raw
// config file.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnv substitutes environment references in the config text
// before YAML parsing. Unset variables without a default expand to
// the empty string.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v, ok := os.LookupEnv(string(m[1])); ok {
			return []byte(v)
		}
		return m[2]
	})
}

// Locate returns the config file path to use: explicit if given,
// otherwise DefaultFileName under root.
func Locate(explicit, root string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(root, DefaultFileName)
}

// Example is a commented starter config, written by "mergevet config
// init".
const Example = `# mergevet configuration
llm:
  provider: anthropic            # anthropic, openai, zhipu, minimax, qwen, deepseek
  api_key: ${ANTHROPIC_API_KEY}  # ${VAR} and ${VAR:-default} are expanded
  # model: claude-sonnet-4-20250514

# Files under these directories are never reported below medium risk.
critical_paths:
  - internal/auth
  - internal/payments

exclude_patterns:
  - vendor/**
  - "**/*.gen.go"

cache:
  ttl: 168h
  # completions: true  # also cache raw model responses

review:
  max_full_files: 20
  concurrency: 4
  timeout: 10m
  redact_secrets: true

output:
  format: markdown  # markdown, json, pr-comment
`

// WriteExample writes the starter config to path, refusing to clobber
// an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(Example), 0o644)
}
