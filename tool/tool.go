// Package tool holds the agent's executable tools: shell commands,
// file access, unified-diff patching, todo tracking and web fetch.
// Tools are exposed both to the interactive LLM loop (as tool-use
// definitions) and to the CLI commands directly.
package tool

import (
	"context"
	"fmt"
)

// ToolDefinition defines one tool the model may invoke.
type ToolDefinition struct {
	ID          string
	Name        string
	Description string
	InputSchema map[string]interface{}
	Execute     func(params map[string]interface{}, ctx ToolContext) (ToolResult, error)
}

// ToolContext carries per-invocation environment for tool execution.
type ToolContext struct {
	SessionID string
	Abort     context.Context
	Mode      string // "normal", "plan", "bypass"

	// WorkDir roots all relative file operations.
	WorkDir string
	// LogDir receives shell command logs.
	LogDir string
	// StateFile is the todo persistence path.
	StateFile string
	// BackupDir receives pre-patch file copies.
	BackupDir string
}

// ToolResult is what a tool execution produced.
type ToolResult struct {
	Title    string
	Output   string
	Metadata map[string]interface{}
	Error    error
}

// ToolRegistry manages all available tools.
type ToolRegistry struct {
	tools map[string]*ToolDefinition
}

// NewToolRegistry creates a registry with the built-in tool set.
func NewToolRegistry() *ToolRegistry {
	registry := &ToolRegistry{
		tools: make(map[string]*ToolDefinition),
	}

	registry.Register(BashTool())
	registry.Register(ReadTool())
	registry.Register(WriteTool())
	registry.Register(DeleteTool())
	registry.Register(PatchTool())
	registry.Register(TodoWriteTool())
	registry.Register(TodoReadTool())
	registry.Register(WebFetchTool())

	return registry
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool *ToolDefinition) {
	r.tools[tool.ID] = tool
}

// Get retrieves a tool by ID.
func (r *ToolRegistry) Get(id string) (*ToolDefinition, error) {
	tool, ok := r.tools[id]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", id)
	}
	return tool, nil
}

// GetAll returns all registered tools.
func (r *ToolRegistry) GetAll() []*ToolDefinition {
	tools := make([]*ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Execute runs a tool with the given parameters. In plan mode nothing
// is executed; the call is echoed back instead.
func (r *ToolRegistry) Execute(id string, params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	tool, err := r.Get(id)
	if err != nil {
		return ToolResult{}, err
	}

	if ctx.Mode == "plan" {
		return ToolResult{
			Title:  fmt.Sprintf("[PLAN] %s", tool.Name),
			Output: fmt.Sprintf("Would execute %s with params: %v", tool.Name, params),
		}, nil
	}

	return tool.Execute(params, ctx)
}
