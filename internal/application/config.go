// Package application wires the evaluation pipeline together: validated
// configuration, the concurrent orchestrator, result consolidation, and
// the engine that runs an entire contest pass.
package application

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hotbench/hotbench/internal/domain"
)

// Package-level validator for configuration structs.
var validate = validator.New()

// Default configuration values applied when the contest file omits them.
const (
	DefaultMaxConcurrency    = 5
	DefaultMaxRetries        = 2
	DefaultRetryBaseDelayMs  = 500
	DefaultRetryMaxDelayMs   = 10000
	DefaultRequestTimeoutSec = 60
	DefaultNumWinners        = 3
	DefaultMaxWordCount      = 400
)

// JudgeSpec configures one judge in the roster. The application layer
// carries the declarative description only; the CLI resolves it to a
// concrete judge through the infrastructure registry.
type JudgeSpec struct {
	// ID is the unique roster identifier for the judge.
	ID string `yaml:"id" validate:"required,min=1"`

	// Type names the judge archetype registered at startup.
	Type string `yaml:"type" validate:"required,min=1"`

	// Provider selects the backing LLM provider.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model overrides the provider default model when set.
	Model string `yaml:"model"`

	// Persona overrides the archetype's default persona text.
	Persona string `yaml:"persona"`

	// Temperature controls scoring randomness.
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`

	// MaxTokens bounds the judge's response length.
	MaxTokens int `yaml:"max_tokens" validate:"omitempty,min=50,max=8000"`

	// RequestsPerSecond paces this judge's provider calls; zero disables
	// client-side rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`

	// Burst allows temporary spikes above the sustained rate.
	Burst int `yaml:"burst" validate:"min=0"`
}

// Config is the immutable contest configuration, constructed once at
// process start and passed by reference to every component. It is
// validated before any external call is made; an invalid configuration is
// the only fatal error in the pipeline.
type Config struct {
	// Rubric defines the scoring categories and maxima.
	Rubric domain.Rubric `yaml:"rubric" validate:"required,min=1,dive"`

	// Judges is the judge roster. Roster order defines the ordered
	// collection inside each consolidated score.
	Judges []JudgeSpec `yaml:"judges" validate:"required,min=1,dive"`

	// MaxConcurrency bounds the number of in-flight (essay, judge)
	// evaluations; the pool is never unbounded.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=64"`

	// MaxRetries caps additional attempts for transient failures
	// (timeout, provider_error). Deterministic failures are retried at
	// most once regardless.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RetryBaseDelayMs is the base backoff delay in milliseconds.
	RetryBaseDelayMs int `yaml:"retry_base_delay_ms" validate:"min=0,max=60000"`

	// RetryMaxDelayMs caps the backoff delay in milliseconds.
	RetryMaxDelayMs int `yaml:"retry_max_delay_ms" validate:"min=0,max=300000"`

	// RequestTimeoutSeconds bounds each individual provider call.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" validate:"min=1,max=600"`

	// EvaluationTimeoutSeconds bounds the full evaluation pass; zero
	// disables the overall deadline. Outstanding calls at expiry are
	// canceled and marked timeout-failed; completed results are kept.
	EvaluationTimeoutSeconds int `yaml:"evaluation_timeout_seconds" validate:"min=0,max=86400"`

	// NumWinners is how many top-ranked essays are designated winners.
	NumWinners int `yaml:"num_winners" validate:"min=1"`

	// Aggregation selects the combined-score function ("sum" or "mean").
	Aggregation string `yaml:"aggregation" validate:"omitempty,oneof=sum mean"`

	// MaxWordCount disqualifies essays above this length; zero disables.
	MaxWordCount int `yaml:"max_word_count" validate:"min=0"`
}

// DefaultConfig returns a configuration with the standard rubric and
// operational defaults. The judge roster must still be supplied.
func DefaultConfig() Config {
	return Config{
		Rubric:                domain.DefaultRubric(),
		MaxConcurrency:        DefaultMaxConcurrency,
		MaxRetries:            DefaultMaxRetries,
		RetryBaseDelayMs:      DefaultRetryBaseDelayMs,
		RetryMaxDelayMs:       DefaultRetryMaxDelayMs,
		RequestTimeoutSeconds: DefaultRequestTimeoutSec,
		NumWinners:            DefaultNumWinners,
		Aggregation:           "sum",
		MaxWordCount:          DefaultMaxWordCount,
	}
}

// LoadConfig reads a YAML contest configuration, layering file values
// over defaults and validating the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for the fatal errors that must abort
// a run before any evaluation begins: empty roster, duplicate judge IDs,
// and invalid rubric definitions.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	if err := c.Rubric.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Judges))
	for _, spec := range c.Judges {
		if _, dup := seen[spec.ID]; dup {
			return fmt.Errorf("%w: duplicate judge id %q", domain.ErrInvalidConfiguration, spec.ID)
		}
		seen[spec.ID] = struct{}{}
	}

	if _, err := domain.NewAggregator(c.Aggregation); err != nil {
		return err
	}

	return nil
}

// Roster returns the configured judge IDs in roster order.
func (c Config) Roster() []string {
	ids := make([]string, len(c.Judges))
	for i, spec := range c.Judges {
		ids[i] = spec.ID
	}
	return ids
}

// RetryBaseDelay returns the base backoff delay as a duration.
func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// RetryMaxDelay returns the backoff delay cap as a duration.
func (c Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-call timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// EvaluationTimeout returns the full-pass timeout as a duration.
func (c Config) EvaluationTimeout() time.Duration {
	return time.Duration(c.EvaluationTimeoutSeconds) * time.Second
}
