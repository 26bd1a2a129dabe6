// Package llm wraps the Anthropic API behind the small set of
// completions the agent needs (questions, plans, file generation,
// diff generation).
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"lca/config"
)

const (
	maxTokens  = 4000
	maxRetries = 3
	retryDelay = time.Second
)

// ErrNoAPIKey is returned by New when the configuration carries no key.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY is not set")

// Client issues completions against the configured model.
type Client struct {
	api   anthropic.Client
	model anthropic.Model
}

// New builds a client from the configuration. The API key is required;
// a base URL override is honored when present.
func New(cfg *config.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:   anthropic.NewClient(opts...),
		model: anthropic.Model(cfg.Model),
	}, nil
}

// complete sends one system+user exchange and returns the concatenated
// text blocks, retrying transient failures with linear backoff.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: maxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err == nil {
			var text string
			for _, block := range resp.Content {
				if block.Type == "text" {
					text += block.Text
				}
			}
			if text == "" {
				return "", errors.New("empty response from model")
			}
			return text, nil
		}

		lastErr = err
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}
	}
	return "", fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

// withContext prefixes the prompt with supporting context, mirroring
// how project info is fed alongside a request.
func withContext(prompt, contextText string) string {
	if contextText == "" {
		return prompt
	}
	return fmt.Sprintf("Context:\n%s\n\nRequest:\n%s", contextText, prompt)
}

// Ask answers a free-form question.
func (c *Client) Ask(ctx context.Context, question, contextText string) (string, error) {
	return c.complete(ctx, AskPrompt, withContext(question, contextText))
}

// CreatePlan produces an actionable plan for a goal.
func (c *Client) CreatePlan(ctx context.Context, goal string) (string, error) {
	return c.complete(ctx, PlanningPrompt, "Create a plan for: "+goal)
}

// GenerateFileContent turns a description into full file content.
func (c *Client) GenerateFileContent(ctx context.Context, description string) (string, error) {
	out, err := c.complete(ctx, FileGenerationPrompt, "Generate file content for: "+description)
	if err != nil {
		return "", err
	}
	return ExtractCode(out), nil
}

// EditFile asks for a unified diff implementing an instruction against
// the given file content.
func (c *Client) EditFile(ctx context.Context, fileContent, instruction string) (string, error) {
	prompt := fmt.Sprintf("File content:\n%s\n\nInstruction: %s\n\nGenerate unified diff:", fileContent, instruction)
	out, err := c.complete(ctx, FileEditPrompt, prompt)
	if err != nil {
		return "", err
	}
	return ExtractDiff(out), nil
}

// GeneratePatch asks for a multi-file unified diff from a description.
func (c *Client) GeneratePatch(ctx context.Context, description, contextText string) (string, error) {
	out, err := c.complete(ctx, PatchGenerationPrompt, withContext("Generate patch for: "+description, contextText))
	if err != nil {
		return "", err
	}
	return ExtractDiff(out), nil
}

// AnalyzeProject summarizes scan results into a code map.
func (c *Client) AnalyzeProject(ctx context.Context, projectInfo string) (string, error) {
	return c.complete(ctx, AnalysisPrompt, "Analyze this project:\n"+projectInfo)
}
