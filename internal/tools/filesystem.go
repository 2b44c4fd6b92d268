package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// maxReadBytes caps what read_file returns to the model.
const maxReadBytes = 128 * 1024

// Sandbox resolves tool-supplied paths against the workspace.
type Sandbox struct {
	root     string
	restrict bool
}

// NewSandbox returns a Sandbox rooted at workspace. With restrict set, paths
// that escape the workspace (including through symlinks) are refused.
func NewSandbox(workspace string, restrict bool) Sandbox {
	root := workspace
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if real, err := filepath.EvalSymlinks(root); err == nil {
			root = real
		}
	}
	return Sandbox{root: root, restrict: restrict && root != ""}
}

// Resolve returns the absolute path for p.
func (s Sandbox) Resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if !filepath.IsAbs(p) && s.root != "" {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)

	resolved := p
	if real, err := filepath.EvalSymlinks(p); err == nil {
		resolved = real
	} else if real, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		// New file: its parent decides where it lands.
		resolved = filepath.Join(real, filepath.Base(p))
	}

	if s.restrict {
		rel, err := filepath.Rel(s.root, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", errors.Errorf("path %s is outside the workspace", p)
		}
	}
	return resolved, nil
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// ---------------------------------------------------------------------------
// read_file
// ---------------------------------------------------------------------------

type ReadFileTool struct{ box Sandbox }

func NewReadFileTool(box Sandbox) *ReadFileTool { return &ReadFileTool{box: box} }

func (t *ReadFileTool) Name() string        { return string(ToolReadFile) }
func (t *ReadFileTool) Description() string { return "Read a text file from the workspace." }
func (t *ReadFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "File path, relative to the workspace or absolute"}
		},
		"required": ["path"]
	}`)
}

func (t *ReadFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	fp, err := t.box.Resolve(path)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	info, err := os.Stat(fp)
	if err != nil {
		return fmt.Sprintf("Error: File not found: %s", path), nil
	}
	if !info.Mode().IsRegular() {
		return fmt.Sprintf("Error: Not a file: %s", path), nil
	}
	data, err := os.ReadFile(fp)
	if err != nil {
		return fmt.Sprintf("Error reading file: %s", err), nil
	}
	if len(data) > maxReadBytes {
		return string(data[:maxReadBytes]) + fmt.Sprintf("\n... (truncated, %d bytes total)", len(data)), nil
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// write_file
// ---------------------------------------------------------------------------

type WriteFileTool struct{ box Sandbox }

func NewWriteFileTool(box Sandbox) *WriteFileTool { return &WriteFileTool{box: box} }

func (t *WriteFileTool) Name() string { return string(ToolWriteFile) }
func (t *WriteFileTool) Description() string {
	return "Write content to a file in the workspace, creating parent directories as needed."
}
func (t *WriteFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "File path to write"},
			"content": {"type": "string", "description": "Full file content"}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	fp, err := t.box.Resolve(stringParam(params, "path"))
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	content := stringParam(params, "content")
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Sprintf("Error creating directories: %s", err), nil
	}
	if err := os.WriteFile(fp, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error writing file: %s", err), nil
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), fp), nil
}

// ---------------------------------------------------------------------------
// edit_file
// ---------------------------------------------------------------------------

type EditFileTool struct{ box Sandbox }

func NewEditFileTool(box Sandbox) *EditFileTool { return &EditFileTool{box: box} }

func (t *EditFileTool) Name() string { return string(ToolEditFile) }
func (t *EditFileTool) Description() string {
	return "Replace one exact occurrence of old_text with new_text in a workspace file."
}
func (t *EditFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "File path to edit"},
			"old_text": {"type": "string", "description": "Exact text to replace; must occur once"},
			"new_text": {"type": "string", "description": "Replacement text"}
		},
		"required": ["path", "old_text", "new_text"]
	}`)
}

func (t *EditFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	oldText := stringParam(params, "old_text")
	newText := stringParam(params, "new_text")

	fp, err := t.box.Resolve(path)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	if oldText == "" {
		return "Error: old_text is required", nil
	}
	data, err := os.ReadFile(fp)
	if err != nil {
		return fmt.Sprintf("Error: File not found: %s", path), nil
	}
	content := string(data)

	switch n := strings.Count(content, oldText); {
	case n == 0:
		return fmt.Sprintf("Error: old_text not found in %s. Read the file and retry with its exact content.", path), nil
	case n > 1:
		return fmt.Sprintf("Error: old_text appears %d times in %s. Include more surrounding text.", n, path), nil
	}

	updated := strings.Replace(content, oldText, newText, 1)
	if err := os.WriteFile(fp, []byte(updated), 0o644); err != nil {
		return fmt.Sprintf("Error writing file: %s", err), nil
	}
	return fmt.Sprintf("Edited %s", fp), nil
}

// ---------------------------------------------------------------------------
// list_dir
// ---------------------------------------------------------------------------

type ListDirTool struct{ box Sandbox }

func NewListDirTool(box Sandbox) *ListDirTool { return &ListDirTool{box: box} }

func (t *ListDirTool) Name() string        { return string(ToolListDir) }
func (t *ListDirTool) Description() string { return "List a workspace directory. Directories end with '/'." }
func (t *ListDirTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Directory path; '.' is the workspace"}
		}
	}`)
}

func (t *ListDirTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	if path == "" {
		path = "."
	}
	dp, err := t.box.Resolve(path)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	entries, err := os.ReadDir(dp)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: Directory not found: %s", path), nil
		}
		return fmt.Sprintf("Error listing directory: %s", err), nil
	}
	if len(entries) == 0 {
		return fmt.Sprintf("Directory %s is empty", path), nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}
