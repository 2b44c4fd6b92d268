package config

import (
	"strings"

	"github.com/jarvis-assistant/jarvis/internal/config/provider"
	"github.com/jarvis-assistant/jarvis/internal/providers"
)

// MatchResult is the resolved LLM provider config and registry name for a model.
type MatchResult struct {
	Provider *provider.ProviderConfig
	Name     string // e.g. "gemini", "openrouter"
}

// usable reports whether p has enough configuration to be selected.
// The custom provider is addressed by its endpoint and may run keyless.
func usable(spec providers.ProviderSpec, p *provider.ProviderConfig) bool {
	if p == nil {
		return false
	}
	if spec.IsDirect || spec.IsLocal {
		return p.APIKey != "" || p.APIBase != ""
	}
	return p.APIKey != ""
}

// MatchProvider resolves which provider config and registry entry to use for model.
// If model is empty, the default model from agents.defaults.model is used.
//
// Priority order:
//  1. Explicit provider prefix in model string (e.g. "gemini/gemini-2.5-flash" → gemini)
//  2. Keyword match in model name (registry order)
//  3. Fallback: first configured provider in registry order
func (c *Config) MatchProvider(model string) MatchResult {
	if model == "" {
		model = c.Agents.Defaults.Model
	}
	modelLower := strings.ToLower(model)
	modelNorm := strings.ReplaceAll(modelLower, "-", "_")
	modelPrefix, _, hasPrefix := strings.Cut(modelLower, "/")
	normalizedPrefix := strings.ReplaceAll(modelPrefix, "-", "_")

	kwMatches := func(kw string) bool {
		kw = strings.ToLower(kw)
		kwNorm := strings.ReplaceAll(kw, "-", "_")
		return strings.Contains(modelLower, kw) || strings.Contains(modelNorm, kwNorm)
	}

	if hasPrefix {
		for _, spec := range providers.PROVIDERS {
			p := c.ProviderByName(spec.Name)
			if normalizedPrefix == spec.Name && usable(spec, p) {
				return MatchResult{Provider: p, Name: spec.Name}
			}
		}
	}

	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if !usable(spec, p) {
			continue
		}
		for _, kw := range spec.Keywords {
			if kwMatches(kw) {
				return MatchResult{Provider: p, Name: spec.Name}
			}
		}
	}

	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if usable(spec, p) {
			return MatchResult{Provider: p, Name: spec.Name}
		}
	}

	return MatchResult{}
}

// GetProvider returns the matched ProviderConfig for model (or nil).
func (c *Config) GetProvider(model string) *provider.ProviderConfig {
	return c.MatchProvider(model).Provider
}

// GetProviderName returns the registry name of the matched provider (or "").
func (c *Config) GetProviderName(model string) string {
	return c.MatchProvider(model).Name
}

// GetAPIBase resolves the effective API base URL for model.
// Precedence: user-configured apiBase > registry default.
func (c *Config) GetAPIBase(model string) string {
	result := c.MatchProvider(model)
	if result.Provider != nil && result.Provider.APIBase != "" {
		return result.Provider.APIBase
	}
	if spec := providers.FindByName(result.Name); spec != nil {
		return spec.DefaultAPIBase
	}
	return ""
}

// GetAPIKey returns the API key for model (or "").
func (c *Config) GetAPIKey(model string) string {
	if p := c.GetProvider(model); p != nil {
		return p.APIKey
	}
	return ""
}

// ProviderParams collects what providers.New needs for the default model.
func (c *Config) ProviderParams() providers.Params {
	model := c.Agents.Defaults.Model
	m := c.MatchProvider(model)
	params := providers.Params{
		DefaultModel: model,
		ProviderName: m.Name,
		APIBase:      c.GetAPIBase(model),
	}
	if m.Provider != nil {
		params.APIKey = m.Provider.APIKey
		params.ExtraHeaders = m.Provider.ExtraHeaders
	}
	return params
}
