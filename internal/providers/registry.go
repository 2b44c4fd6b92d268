package providers

import "strings"

// ProviderSpec is the metadata record for one LLM provider. Every provider
// is reached through its OpenAI-compatible chat completions endpoint.
type ProviderSpec struct {
	Name        string   // config field name, e.g. "gemini"
	Keywords    []string // model-name keywords for matching (lowercase)
	EnvKey      string   // conventional env var for the API key
	DisplayName string   // shown in `jarvis status`

	IsGateway           bool   // routes any model (OpenRouter)
	IsLocal             bool   // local deployment (vLLM)
	IsDirect            bool   // user-supplied endpoint
	DetectByKeyPrefix   string // match api_key prefix to identify gateway
	DetectByBaseKeyword string // match substring in api_base URL
	DefaultAPIBase      string // fallback base URL when none is configured

	// StripModelPrefix drops "provider/" before sending the model name.
	StripModelPrefix bool
}

// Label returns the display name, defaulting to Title-cased Name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// PROVIDERS is the registry. Order = match priority.
var PROVIDERS = []ProviderSpec{
	{
		Name:        "custom",
		DisplayName: "Custom",
		IsDirect:    true,
	},
	{
		Name:                "openrouter",
		Keywords:            []string{"openrouter"},
		EnvKey:              "OPENROUTER_API_KEY",
		DisplayName:         "OpenRouter",
		IsGateway:           true,
		DetectByKeyPrefix:   "sk-or-",
		DetectByBaseKeyword: "openrouter",
		DefaultAPIBase:      "https://openrouter.ai/api/v1",
	},
	{
		Name:             "gemini",
		Keywords:         []string{"gemini"},
		EnvKey:           "GEMINI_API_KEY",
		DisplayName:      "Gemini",
		DefaultAPIBase:   "https://generativelanguage.googleapis.com/v1beta/openai",
		StripModelPrefix: true,
	},
	{
		Name:             "openai",
		Keywords:         []string{"openai", "gpt"},
		EnvKey:           "OPENAI_API_KEY",
		DisplayName:      "OpenAI",
		DefaultAPIBase:   "https://api.openai.com/v1",
		StripModelPrefix: true,
	},
	{
		Name:             "deepseek",
		Keywords:         []string{"deepseek"},
		EnvKey:           "DEEPSEEK_API_KEY",
		DisplayName:      "DeepSeek",
		DefaultAPIBase:   "https://api.deepseek.com/v1",
		StripModelPrefix: true,
	},
	{
		Name:             "groq",
		Keywords:         []string{"groq"},
		EnvKey:           "GROQ_API_KEY",
		DisplayName:      "Groq",
		DefaultAPIBase:   "https://api.groq.com/openai/v1",
		StripModelPrefix: true,
	},
	{
		Name:           "vllm",
		Keywords:       []string{"vllm"},
		EnvKey:         "HOSTED_VLLM_API_KEY",
		DisplayName:    "vLLM/Local",
		IsLocal:        true,
		DefaultAPIBase: "http://localhost:8000/v1",
	},
}

// FindByModel matches a standard provider by model-name keyword (case-insensitive).
// Skips gateways and local providers; those are matched by api_key/api_base.
func FindByModel(model string) *ProviderSpec {
	modelLower := strings.ToLower(model)
	modelPrefix, _, _ := strings.Cut(modelLower, "/")

	var std []int
	for i := range PROVIDERS {
		if !PROVIDERS[i].IsGateway && !PROVIDERS[i].IsLocal && !PROVIDERS[i].IsDirect {
			std = append(std, i)
		}
	}

	for _, i := range std {
		if strings.Contains(modelLower, "/") && modelPrefix == PROVIDERS[i].Name {
			return &PROVIDERS[i]
		}
	}
	for _, i := range std {
		for _, kw := range PROVIDERS[i].Keywords {
			if strings.Contains(modelLower, kw) {
				return &PROVIDERS[i]
			}
		}
	}
	return nil
}

// FindGateway detects the gateway or local provider.
// Priority: (1) explicit provider name, (2) api_key prefix, (3) api_base keyword.
func FindGateway(providerName, apiKey, apiBase string) *ProviderSpec {
	if providerName != "" {
		if s := FindByName(providerName); s != nil && (s.IsGateway || s.IsLocal) {
			return s
		}
	}
	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.DetectByKeyPrefix != "" && strings.HasPrefix(apiKey, spec.DetectByKeyPrefix) {
			return spec
		}
		if spec.DetectByBaseKeyword != "" && strings.Contains(apiBase, spec.DetectByBaseKeyword) {
			return spec
		}
	}
	return nil
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}
