package llm

// RequestOptions is the standardized set of per-request parameters shared
// by all providers. Unrecognized options are passed through in Extra for
// provider-specific features.
type RequestOptions struct {
	// Model overrides the client's configured model for this request.
	Model string
	// MaxTokens caps the number of generated tokens.
	MaxTokens int
	// Temperature controls sampling randomness; nil uses the provider
	// default.
	Temperature *float64
	// System provides system-role instructions to the model.
	System string
	// JSONMode requests structured JSON output where supported.
	JSONMode bool
	// Extra holds provider-specific options not covered above.
	Extra map[string]any
}

// DefaultMaxTokens bounds responses when callers don't set max_tokens.
const DefaultMaxTokens = 1024

// ParseRequestOptions extracts standardized parameters from a generic
// options map, applying defaults for missing or invalid entries.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		Model:     optString(opts, "model", defaultModel),
		MaxTokens: optInt(opts, "max_tokens", DefaultMaxTokens),
		System:    optString(opts, "system", ""),
		Extra:     make(map[string]any),
	}

	if temp, ok := optFloat(opts, "temperature"); ok && temp >= 0.0 && temp <= 2.0 {
		options.Temperature = &temp
	}

	if jsonMode, ok := opts["json_mode"].(bool); ok {
		options.JSONMode = jsonMode
	}

	for k, v := range opts {
		switch k {
		case "model", "max_tokens", "system", "temperature", "json_mode":
			// Standard options, already handled.
		default:
			options.Extra[k] = v
		}
	}

	return options
}

func optString(opts map[string]any, key, fallback string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func optInt(opts map[string]any, key string, fallback int) int {
	switch v := opts[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

func optFloat(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
