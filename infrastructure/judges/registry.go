package judges

import (
	"fmt"
	"sync"

	"github.com/hotbench/hotbench/internal/ports"
)

// Config describes one judge in the roster. The Type selects a registered
// constructor; Persona overrides the archetype's default persona text.
type Config struct {
	// ID is the unique roster identifier for the judge.
	ID string `yaml:"id" validate:"required,min=1"`

	// Type names the registered judge archetype.
	Type string `yaml:"type" validate:"required,oneof=academic creative historian literature score"`

	// Provider selects the LLM provider backing this judge.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model overrides the provider's default model when set.
	Model string `yaml:"model"`

	// Persona overrides the archetype's default persona text.
	Persona string `yaml:"persona"`

	// Temperature controls scoring randomness (default 0.0).
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`

	// MaxTokens bounds the judge's response length.
	MaxTokens int `yaml:"max_tokens" validate:"omitempty,min=50,max=8000"`
}

// Factory constructs a judge from its configuration and a ready LLM client.
type Factory func(cfg Config, client ports.LLMClient) (ports.Judge, error)

// defaultPersonas maps archetype names to their persona text, mirroring
// the contest's original judging panel.
var defaultPersonas = map[string]string{
	"academic":   "The Academic",
	"creative":   "The Creative Writer",
	"historian":  "History Professor",
	"literature": "English Literature Professor",
}

// Registry holds named judge constructors. Judge classes are a static set
// of variants selected by configuration at startup; there is no runtime
// class discovery.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with the built-in
// archetypes plus the generic "score" type for fully custom personas.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	for archetype, persona := range defaultPersonas {
		r.Register(archetype, personaFactory(persona))
	}

	// Generic judge requiring an explicit persona in configuration.
	r.Register("score", func(cfg Config, client ports.LLMClient) (ports.Judge, error) {
		if cfg.Persona == "" {
			return nil, fmt.Errorf("judge %s: type %q requires an explicit persona", cfg.ID, cfg.Type)
		}
		return NewScoreJudge(cfg.ID, cfg.Persona, client, cfg.Temperature, cfg.MaxTokens)
	})

	return r
}

// Register adds or replaces a named judge constructor.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New constructs a judge for the given configuration.
func (r *Registry) New(cfg Config, client ports.LLMClient) (ports.Judge, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown judge type: %s", cfg.Type)
	}
	return factory(cfg, client)
}

// Types returns the registered archetype names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

func personaFactory(defaultPersona string) Factory {
	return func(cfg Config, client ports.LLMClient) (ports.Judge, error) {
		persona := cfg.Persona
		if persona == "" {
			persona = defaultPersona
		}
		return NewScoreJudge(cfg.ID, persona, client, cfg.Temperature, cfg.MaxTokens)
	}
}
