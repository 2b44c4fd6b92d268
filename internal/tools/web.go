package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/pkg/errors"
)

const (
	webUserAgent  = "Mozilla/5.0 (compatible; jarvis/1.0; +https://github.com/jarvis-assistant/jarvis)"
	maxRedirects  = 5
	maxFetchBytes = 5 << 20
)

// validateURL checks that rawURL is http(s) with a host.
func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing domain in URL")
	}
	return u, nil
}

// WebFetchTool fetches a page and returns its readable text.
type WebFetchTool struct {
	maxChars   int
	httpClient *http.Client
}

// NewWebFetchTool creates a WebFetchTool. maxChars defaults to 50000.
func NewWebFetchTool(maxChars int) *WebFetchTool {
	if maxChars <= 0 {
		maxChars = 50000
	}
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &WebFetchTool{maxChars: maxChars, httpClient: client}
}

func (t *WebFetchTool) Name() string { return string(ToolWebFetch) }
func (t *WebFetchTool) Description() string {
	return "Fetch a web page and return its main readable text."
}
func (t *WebFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "http(s) URL to fetch"},
			"maxChars": {"type": "integer", "minimum": 100, "description": "Truncate the text to this many characters"}
		},
		"required": ["url"]
	}`)
}

func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL := stringParam(params, "url")
	if rawURL == "" {
		return "Error: url is required", nil
	}
	u, err := validateURL(rawURL)
	if err != nil {
		return "Error: URL validation failed: " + err.Error(), nil
	}

	maxChars := t.maxChars
	if v, ok := params["maxChars"].(float64); ok && v >= 100 {
		maxChars = int(v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "Error reading response: " + err.Error(), nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Sprintf("Error: %s returned HTTP %d", rawURL, resp.StatusCode), nil
	}

	title, text := extractText(resp.Header.Get("Content-Type"), body, resp.Request.URL)

	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", resp.Request.URL)
	if title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", title)
	}
	if runes := []rune(text); len(runes) > maxChars {
		text = string(runes[:maxChars]) + "\n... (truncated)"
	}
	sb.WriteString("\n")
	sb.WriteString(text)
	return sb.String(), nil
}

// extractText returns the readable text of a response body.
func extractText(contentType string, body []byte, pageURL *url.URL) (title, text string) {
	switch {
	case strings.Contains(contentType, "application/json"):
		var v any
		if json.Unmarshal(body, &v) == nil {
			pretty, _ := json.MarshalIndent(v, "", "  ")
			return "", string(pretty)
		}
		return "", string(body)

	case strings.Contains(contentType, "text/html") || looksLikeHTML(body):
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil {
			return "", strings.TrimSpace(string(body))
		}
		return article.Title, collapseBlankLines(article.TextContent)

	default:
		return "", string(body)
	}
}

func looksLikeHTML(b []byte) bool {
	if len(b) > 256 {
		b = b[:256]
	}
	head := strings.ToLower(strings.TrimSpace(string(b)))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
