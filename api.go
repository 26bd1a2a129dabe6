package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	tea "github.com/charmbracelet/bubbletea"

	"lca/llm"
	"lca/tool"
)

// toolUseMsg is a tool execution request from the model.
type toolUseMsg struct {
	toolName     string
	toolID       string
	input        map[string]interface{}
	toolUseBlock anthropic.ContentBlockUnion
}

// toolResultMsg is the result of a tool execution.
type toolResultMsg struct {
	toolName string
	toolID   string
	result   tool.ToolResult
}

// buildAnthropicTools converts registry definitions to API format.
func buildAnthropicTools(registry *tool.ToolRegistry) []anthropic.ToolUnionParam {
	tools := registry.GetAll()
	apiTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, t := range tools {
		schema := t.InputSchema
		properties := schema["properties"]
		required, _ := schema["required"].([]string)

		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: properties,
			Required:   required,
			Type:       "object",
		}

		toolUnion := anthropic.ToolUnionParamOfTool(inputSchema, t.Name)
		if desc := toolUnion.OfTool; desc != nil {
			desc.Description = anthropic.Opt(t.Description)
		}

		apiTools[i] = toolUnion
	}

	return apiTools
}

// sendConversation sends the given message list and interprets the
// response: the first tool_use block wins, otherwise the concatenated
// text is returned.
func sendConversation(
	client anthropic.Client,
	selectedModel anthropic.Model,
	messages []anthropic.MessageParam,
	registry *tool.ToolRegistry,
) tea.Msg {
	resp, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     selectedModel,
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: llm.SystemPrompt}},
		Messages:  messages,
		Tools:     buildAnthropicTools(registry),
	})
	if err != nil {
		return errMsg(err)
	}

	var text string
	for _, content := range resp.Content {
		switch content.Type {
		case "text":
			text += content.Text
		case "tool_use":
			var input map[string]interface{}
			if err := json.Unmarshal([]byte(content.Input), &input); err != nil {
				return errMsg(fmt.Errorf("failed to parse tool input: %v", err))
			}
			return toolUseMsg{
				toolName:     content.Name,
				toolID:       content.ID,
				input:        input,
				toolUseBlock: content,
			}
		}
	}

	if text != "" {
		return responseMsg(text)
	}
	return errMsg(fmt.Errorf("no response from model"))
}

// sendWithTools starts a turn from fresh user input.
func sendWithTools(
	client anthropic.Client,
	selectedModel anthropic.Model,
	history []message,
	userInput string,
	registry *tool.ToolRegistry,
) tea.Msg {
	messages := buildMessageHistory(history)
	if userInput != "" {
		messages = append(messages, anthropic.NewUserMessage(
			anthropic.NewTextBlock(userInput),
		))
	}
	return sendConversation(client, selectedModel, messages, registry)
}

// continueWithToolResult resumes the turn after a tool executed; the
// tool result is already the last entry in history.
func continueWithToolResult(
	client anthropic.Client,
	selectedModel anthropic.Model,
	history []message,
	registry *tool.ToolRegistry,
) tea.Msg {
	return sendConversation(client, selectedModel, buildMessageHistory(history), registry)
}

// buildMessageHistory converts chat history to API message params. The
// API expects user -> assistant(tool_use) -> user(tool_result) -> ...
// ordering, which the history already records.
func buildMessageHistory(history []message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, msg := range history {
		switch {
		case msg.isToolUse && msg.toolUseBlock != nil:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewToolUseBlock(msg.toolUseBlock.ID, msg.toolUseBlock.Input, msg.toolUseBlock.Name),
			))
		case msg.isToolResult:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.toolUseID, msg.content, msg.err != nil),
			))
		case msg.role == "user":
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.content),
			))
		case msg.role == "assistant" && !msg.isToolUse:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.content),
			))
		}
	}

	return messages
}
