package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteTool creates the file writing tool
func WriteTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "write",
		Name: "write",
		Description: `Writes a file inside the project working directory.

Usage:
- This tool will overwrite the existing file if there is one at the provided path.
- Parent directories are created automatically.
- Paths outside the working directory are rejected.
- ALWAYS prefer editing existing files via the patch tool. Only write whole files when creating them or when a patch cannot express the change.`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "The path of the file to write, relative to the working directory",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The content to write to the file",
				},
			},
			"required": []string{"file_path", "content"},
		},
		Execute: executeWrite,
	}
}

// ensureContained rejects paths that escape the working directory.
func ensureContained(path string, ctx ToolContext) (string, error) {
	root := ctx.WorkDir
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %v", err)
		}
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the working directory", path)
	}
	return full, nil
}

func executeWrite(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	filePath, ok := params["file_path"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("file_path parameter is required")
	}
	content, ok := params["content"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("content parameter is required")
	}

	full, err := ensureContained(filePath, ctx)
	if err != nil {
		return ToolResult{}, err
	}

	info, err := os.Stat(full)
	exists := err == nil
	if exists && info.IsDir() {
		return ToolResult{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return ToolResult{}, fmt.Errorf("failed to create parent directory: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return ToolResult{}, fmt.Errorf("failed to write file: %v", err)
	}

	verb := "Created"
	if exists {
		verb = "Updated"
	}
	return ToolResult{
		Title:  fmt.Sprintf("%s %s", verb, filePath),
		Output: fmt.Sprintf("%s %s (%d bytes)", verb, filePath, len(content)),
		Metadata: map[string]interface{}{
			"filepath": full,
			"exists":   exists,
		},
	}, nil
}
