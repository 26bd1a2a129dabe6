package tool

import (
	"fmt"
	"strings"

	"lca/state"
)

// TodoWriteTool creates the todo mutation tool
func TodoWriteTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "todowrite",
		Name: "todowrite",
		Description: `Adds or completes items on the persistent task list.

Usage:
- action "add" requires a title and accepts an optional description
- action "done" requires the numeric id of a pending item
- The list survives across sessions; use todoread to see it`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"add", "done"},
					"description": "Whether to add a new item or complete an existing one",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Title for a new item (action=add)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional longer description for a new item",
				},
				"id": map[string]interface{}{
					"type":        "number",
					"description": "ID of the item to complete (action=done)",
				},
			},
			"required": []string{"action"},
		},
		Execute: executeTodoWrite,
	}
}

// TodoReadTool creates the todo listing tool
func TodoReadTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "todoread",
		Name: "todoread",
		Description: `Reads the persistent task list.

Usage:
- Takes no parameters
- Returns pending items first, then completed ones`,
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: executeTodoRead,
	}
}

func openTodos(ctx ToolContext) (*state.Manager, *state.State, error) {
	if ctx.StateFile == "" {
		return nil, nil, fmt.Errorf("no state file configured")
	}
	mgr := state.NewManager(ctx.StateFile)
	// A corrupt or unreadable state file starts fresh; not fatal here.
	st, _ := mgr.Load()
	return mgr, st, nil
}

func executeTodoWrite(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	action, ok := params["action"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("action parameter is required")
	}

	mgr, st, err := openTodos(ctx)
	if err != nil {
		return ToolResult{}, err
	}

	switch action {
	case "add":
		title, ok := params["title"].(string)
		if !ok || strings.TrimSpace(title) == "" {
			return ToolResult{}, fmt.Errorf("title parameter is required for add")
		}
		description, _ := params["description"].(string)
		item := st.AddTodo(strings.TrimSpace(title), strings.TrimSpace(description))
		if err := mgr.Save(); err != nil {
			return ToolResult{}, err
		}
		return ToolResult{
			Title:  fmt.Sprintf("Added todo #%d", item.ID),
			Output: fmt.Sprintf("#%d %s", item.ID, item.Title),
		}, nil

	case "done":
		idParam, ok := params["id"].(float64)
		if !ok {
			return ToolResult{}, fmt.Errorf("id parameter is required for done")
		}
		id := int(idParam)
		if !st.CompleteTodo(id) {
			return ToolResult{}, fmt.Errorf("no pending todo with id %d", id)
		}
		if err := mgr.Save(); err != nil {
			return ToolResult{}, err
		}
		return ToolResult{
			Title:  fmt.Sprintf("Completed todo #%d", id),
			Output: fmt.Sprintf("Marked #%d as done", id),
		}, nil

	default:
		return ToolResult{}, fmt.Errorf("unknown action: %s", action)
	}
}

func executeTodoRead(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	_, st, err := openTodos(ctx)
	if err != nil {
		return ToolResult{}, err
	}

	pending := st.Pending()
	completed := st.Completed()
	if len(pending) == 0 && len(completed) == 0 {
		return ToolResult{
			Title:  "Todo list",
			Output: "No todos yet",
		}, nil
	}

	var b strings.Builder
	for _, t := range pending {
		fmt.Fprintf(&b, "[ ] #%d %s\n", t.ID, t.Title)
		if t.Description != "" {
			fmt.Fprintf(&b, "        %s\n", t.Description)
		}
	}
	for _, t := range completed {
		fmt.Fprintf(&b, "[x] #%d %s\n", t.ID, t.Title)
	}

	return ToolResult{
		Title:  fmt.Sprintf("Todo list (%d pending, %d done)", len(pending), len(completed)),
		Output: strings.TrimRight(b.String(), "\n"),
		Metadata: map[string]interface{}{
			"pending":   len(pending),
			"completed": len(completed),
		},
	}, nil
}
