package tool

import (
	"fmt"
	"os"
)

// DeleteTool creates the file deletion tool
func DeleteTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "delete",
		Name: "delete",
		Description: `Deletes a file or directory inside the project working directory.

Usage:
- Directories are only removed when recursive is true.
- Paths outside the working directory are rejected.
- Deletion is permanent; there is no undo.`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "The path to delete, relative to the working directory",
				},
				"recursive": map[string]interface{}{
					"type":        "boolean",
					"description": "Delete directories and their contents",
				},
			},
			"required": []string{"path"},
		},
		Execute: executeDelete,
	}
}

func executeDelete(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	path, ok := params["path"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("path parameter is required")
	}
	recursive, _ := params["recursive"].(bool)

	full, err := ensureContained(path, ctx)
	if err != nil {
		return ToolResult{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return ToolResult{}, fmt.Errorf("path not found: %s", path)
		}
		return ToolResult{}, fmt.Errorf("failed to stat path: %v", err)
	}

	if info.IsDir() {
		if !recursive {
			return ToolResult{}, fmt.Errorf("%s is a directory; pass recursive=true to delete it", path)
		}
		if err := os.RemoveAll(full); err != nil {
			return ToolResult{}, fmt.Errorf("failed to delete directory: %v", err)
		}
		return ToolResult{
			Title:  fmt.Sprintf("Deleted %s/", path),
			Output: fmt.Sprintf("Deleted directory %s", path),
		}, nil
	}

	if err := os.Remove(full); err != nil {
		return ToolResult{}, fmt.Errorf("failed to delete file: %v", err)
	}
	return ToolResult{
		Title:  fmt.Sprintf("Deleted %s", path),
		Output: fmt.Sprintf("Deleted file %s", path),
	}, nil
}
