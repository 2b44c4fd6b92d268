package providers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (Gemini, OpenAI, OpenRouter, DeepSeek, Groq, vLLM, custom).
type OpenAIProvider struct {
	client       *openai.Client
	apiBase      string
	defaultModel string
	gateway      *ProviderSpec // non-nil for gateway/local providers
	spec         *ProviderSpec // non-nil for standard providers
}

// NewOpenAIProvider constructs a provider from raw config values.
// The caller extracts these from config.Config to avoid an import cycle.
func NewOpenAIProvider(
	apiKey, apiBase, defaultModel, providerName string,
	extraHeaders map[string]string,
) *OpenAIProvider {
	gateway := FindGateway(providerName, apiKey, apiBase)

	var spec *ProviderSpec
	if gateway == nil {
		spec = FindByModel(defaultModel)
		if spec == nil {
			spec = FindByName(providerName)
		}
	}

	effectiveBase := apiBase
	if effectiveBase == "" {
		switch {
		case gateway != nil && gateway.DefaultAPIBase != "":
			effectiveBase = gateway.DefaultAPIBase
		case spec != nil && spec.DefaultAPIBase != "":
			effectiveBase = spec.DefaultAPIBase
		default:
			effectiveBase = "https://api.openai.com/v1"
		}
	}
	effectiveBase = strings.TrimRight(effectiveBase, "/")

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = effectiveBase
	cfg.HTTPClient = &http.Client{
		Timeout:   120 * time.Second,
		Transport: headerTransport{headers: extraHeaders, base: http.DefaultTransport},
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(cfg),
		apiBase:      effectiveBase,
		defaultModel: defaultModel,
		gateway:      gateway,
		spec:         spec,
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// APIBase returns the resolved endpoint.
func (p *OpenAIProvider) APIBase() string { return p.apiBase }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := openai.ChatCompletionRequest{
		Model:       p.resolveModel(model),
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
		Tools:       toOpenAITools(tools),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return schema.LLMResponse{}, friendlyError(err)
	}
	return fromOpenAIResponse(resp)
}

// resolveModel returns the model name the endpoint expects.
// Gateways receive the name as configured; standard providers get any
// "provider/" prefix stripped.
func (p *OpenAIProvider) resolveModel(model string) string {
	if p.gateway != nil {
		pfx := p.gateway.Name + "/"
		if strings.HasPrefix(strings.ToLower(model), pfx) {
			return model[len(pfx):]
		}
		return model
	}

	if p.spec != nil && p.spec.StripModelPrefix {
		pfx := p.spec.Name + "/"
		if strings.HasPrefix(strings.ToLower(model), pfx) {
			return model[len(pfx):]
		}
	}
	if prefix, rest, ok := strings.Cut(model, "/"); ok && FindByName(strings.ToLower(prefix)) != nil {
		return rest
	}
	return model
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func toOpenAIMessages(messages schema.Messages) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == schema.RoleTool {
			msg.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			args, _ := json.Marshal(tc.Arguments)
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

// toOpenAITools converts definitions in OpenAI function-calling map format
// (see tools.ToolList.Definitions) to typed request tools.
func toOpenAITools(defs []map[string]any) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		fn, _ := def["function"].(map[string]any)
		name, _ := fn["name"].(string)
		if name == "" {
			continue
		}
		desc, _ := fn["description"].(string)
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionDefinition{
				Name:        name,
				Description: desc,
				Parameters:  fn["parameters"],
			},
		})
	}
	return out
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) (schema.LLMResponse, error) {
	if len(resp.Choices) == 0 {
		return schema.LLMResponse{}, errors.New("empty choices in response")
	}
	choice := resp.Choices[0]

	var toolCalls []schema.ToolCallRequest
	for _, tc := range choice.Message.ToolCalls {
		args, err := repairJSON(tc.Function.Arguments)
		if err != nil {
			slog.Warn("failed to parse tool arguments", "tool", tc.Function.Name, "err", err)
			args = map[string]any{}
		}
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	finish := string(choice.FinishReason)
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:      choice.Message.Content,
		ToolCalls:    toolCalls,
		FinishReason: finish,
		Usage: map[string]int{
			"input_tokens":  resp.Usage.PromptTokens,
			"output_tokens": resp.Usage.CompletionTokens,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// JSON repair
// ---------------------------------------------------------------------------

// repairJSON attempts to unmarshal JSON, retrying after stripping trailing
// garbage characters. Some models emit truncated tool arguments.
func repairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	stripped := strings.TrimRight(raw, " \t\n\r}]")
	if !strings.HasSuffix(stripped, "}") {
		stripped += "}"
	}
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, nil
	}

	if i := strings.LastIndex(raw, "}"); i >= 0 {
		if err := json.Unmarshal([]byte(raw[:i+1]), &out); err == nil {
			return out, nil
		}
	}

	return map[string]any{}, errors.Errorf("cannot repair JSON: %s", raw)
}

// ---------------------------------------------------------------------------
// Utilities
// ---------------------------------------------------------------------------

// friendlyError shortens API errors to something fit for the chat window.
func friendlyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return errors.New("LLM rate limit exceeded")
		}
		msg := strings.TrimSpace(apiErr.Message)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return errors.Errorf("LLM request failed (%d): %s", apiErr.HTTPStatusCode, msg)
	}
	return errors.Wrap(err, "LLM request failed")
}

// headerTransport adds configured extra headers to every request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
