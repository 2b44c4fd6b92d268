package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	toolcfg "github.com/jarvis-assistant/jarvis/internal/config/tool"
)

const (
	protocolVersion = "2024-11-05"
	callTimeout     = 60 * time.Second
	sessionHeader   = "Mcp-Session-Id"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     *int64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC error object returned by a server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// toolDef is one entry of a tools/list result.
type toolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// client speaks JSON-RPC to a single MCP server, either over a subprocess's
// stdin/stdout or over HTTP POST.
type client struct {
	name       string
	cfg        toolcfg.MCPServerConfig
	httpClient *http.Client

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu        sync.Mutex // serialises stdio round trips
	nextID    atomic.Int64
	sessionID atomic.Value // string, HTTP transport only
}

func newClient(name string, cfg toolcfg.MCPServerConfig) *client {
	return &client{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: callTimeout},
	}
}

// connect starts the subprocess (stdio servers) and runs the initialize
// handshake.
func (c *client) connect(ctx context.Context) error {
	switch {
	case c.cfg.Command != "":
		if err := c.start(); err != nil {
			return err
		}
	case c.cfg.URL != "":
	default:
		return errors.Errorf("mcp server %q: no command or url configured", c.name)
	}

	if err := c.initialize(ctx); err != nil {
		c.close()
		return errors.Wrap(err, "initialize")
	}
	return nil
}

// start launches the server process. The process outlives the connect
// context; close stops it.
func (c *client) start() error {
	c.cmd = exec.Command(c.cfg.Command, c.cfg.Args...)
	c.cmd.Env = os.Environ()
	for k, v := range c.cfg.Env {
		c.cmd.Env = append(c.cmd.Env, k+"="+v)
	}

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "stdin pipe")
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "stdout pipe")
	}
	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "stderr pipe")
	}
	c.stdin = stdin
	c.stdout = bufio.NewReaderSize(stdout, 1<<20)

	if err := c.cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", c.cfg.Command)
	}

	go func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			slog.Debug("mcp server stderr", "server", c.name, "line", sc.Text())
		}
	}()
	return nil
}

func (c *client) close() {
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
}

func (c *client) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "jarvis", "version": "1.0"},
	}
	if _, err := c.call(ctx, "initialize", params); err != nil {
		return err
	}
	return c.notify(ctx, "notifications/initialized")
}

func (c *client) listTools(ctx context.Context) ([]toolDef, error) {
	raw, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []toolDef `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrap(err, "decode tools/list")
	}
	return result.Tools, nil
}

// callTool runs a tool and flattens its text content. A result flagged
// isError comes back as an in-band "Error: ..." string.
func (c *client) callTool(ctx context.Context, tool string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := c.call(ctx, "tools/call", map[string]any{"name": tool, "arguments": args})
	if err != nil {
		return "", err
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return string(raw), nil
	}

	var parts []string
	for _, block := range result.Content {
		switch {
		case block.Text != "":
			parts = append(parts, block.Text)
		case block.Type != "" && block.Type != "text":
			parts = append(parts, "["+block.Type+" content]")
		}
	}
	out := strings.Join(parts, "\n")
	if out == "" {
		out = "(no output)"
	}
	if result.IsError {
		out = "Error: " + out
	}
	return out, nil
}

func (c *client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params}

	var (
		resp *rpcResponse
		err  error
	)
	if c.cfg.URL != "" {
		resp, err = c.roundTripHTTP(ctx, req)
	} else {
		resp, err = c.roundTripStdio(ctx, req)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", c.name, method)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func (c *client) notify(ctx context.Context, method string) error {
	msg := rpcRequest{JSONRPC: "2.0", Method: method}
	if c.cfg.URL != "" {
		_, err := c.post(ctx, msg)
		return err
	}
	data, _ := json.Marshal(msg)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.stdin.Write(append(data, '\n'))
	return err
}

type lineResult struct {
	resp *rpcResponse
	err  error
}

func (c *client) roundTripStdio(ctx context.Context, req rpcRequest) (*rpcResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.stdin.Write(append(data, '\n')); err != nil {
		return nil, errors.Wrap(err, "write request")
	}

	done := make(chan lineResult, 1)
	go func() {
		for {
			line, err := c.stdout.ReadBytes('\n')
			if err != nil {
				done <- lineResult{err: errors.Wrap(err, "read response")}
				return
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			var resp rpcResponse
			if json.Unmarshal(line, &resp) != nil || resp.ID == nil || *resp.ID != req.ID {
				continue // log output or a notification
			}
			done <- lineResult{resp: &resp}
			return
		}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		// The reader goroutine still owns stdout; the stream is unusable now.
		c.close()
		return nil, ctx.Err()
	}
}

func (c *client) roundTripHTTP(ctx context.Context, req rpcRequest) (*rpcResponse, error) {
	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return &resp, nil
}

// post sends one JSON-RPC message and returns the JSON body. Servers that
// answer with an SSE stream are read up to the first data line.
func (c *client) post(ctx context.Context, msg rpcRequest) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if sid, _ := c.sessionID.Load().(string); sid != "" {
		httpReq.Header.Set(sessionHeader, sid)
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(sessionHeader); sid != "" {
		c.sessionID.Store(sid)
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if msg.ID == 0 {
		return nil, nil
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		for sc.Scan() {
			if payload, ok := strings.CutPrefix(sc.Text(), "data:"); ok {
				return []byte(strings.TrimSpace(payload)), nil
			}
		}
		return nil, errors.New("event stream ended without data")
	}
	return io.ReadAll(resp.Body)
}
