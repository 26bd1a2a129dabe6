package tool

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultReadLimit = 2000
	MaxLineLength    = 2000
)

// ReadTool creates the file reading tool
func ReadTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "read",
		Name: "read",
		Description: `Read a file from the project.

Usage:
- The file_path parameter is resolved against the working directory when relative
- By default, it reads up to 2000 lines starting from the beginning of the file
- You can optionally specify a line offset and limit for long files
- Any lines longer than 2000 characters will be truncated
- Results are returned using cat -n format, with line numbers starting at 1

This tool can only read files, not directories.`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "The path of the file to read",
				},
				"offset": map[string]interface{}{
					"type":        "number",
					"description": "The line number to start reading from (0-based)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "The number of lines to read",
				},
			},
			"required": []string{"file_path"},
		},
		Execute: executeRead,
	}
}

// resolvePath makes path absolute against the tool working directory.
func resolvePath(path string, ctx ToolContext) string {
	if filepath.IsAbs(path) {
		return path
	}
	dir := ctx.WorkDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, path)
}

func executeRead(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	filePath, ok := params["file_path"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("file_path parameter is required")
	}
	filePath = resolvePath(filePath, ctx)

	offset := 0
	if offsetParam, ok := params["offset"].(float64); ok {
		offset = int(offsetParam)
	}
	limit := DefaultReadLimit
	if limitParam, ok := params["limit"].(float64); ok {
		limit = int(limitParam)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ToolResult{}, fmt.Errorf("file not found: %s", filePath)
		}
		return ToolResult{}, fmt.Errorf("failed to stat file: %v", err)
	}
	if info.IsDir() {
		return ToolResult{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return ToolResult{}, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	var output strings.Builder
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lineNum := 0
	emitted := 0
	for scanner.Scan() {
		lineNum++
		if lineNum-1 < offset {
			continue
		}
		if emitted >= limit {
			break
		}
		line := scanner.Text()
		if len(line) > MaxLineLength {
			line = line[:MaxLineLength] + "..."
		}
		fmt.Fprintf(&output, "%6d\t%s\n", lineNum, line)
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return ToolResult{}, fmt.Errorf("error reading file: %v", err)
	}

	title := fmt.Sprintf("%s (%d lines)", filePath, emitted)
	return ToolResult{
		Title:  title,
		Output: output.String(),
		Metadata: map[string]interface{}{
			"lines": emitted,
		},
	}, nil
}
