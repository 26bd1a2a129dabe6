package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	MaxResponseSize   = 5 * 1024 * 1024
	DefaultWebTimeout = 30 * time.Second
	MaxWebTimeout     = 120 * time.Second
)

// WebFetchTool creates the web fetch tool
func WebFetchTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "webfetch",
		Name: "webfetch",
		Description: `Fetches content from a URL and processes it.

Usage:
- The URL must be a fully-formed valid URL starting with http:// or https://
- HTTP URLs are automatically upgraded to HTTPS
- The format parameter can be "text", "markdown", or "html"
- Responses larger than 5MB are rejected
- Default timeout is 30 seconds, maximum is 120 seconds`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The URL to fetch content from",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"text", "markdown", "html"},
					"description": "The format to return the content in",
				},
				"timeout": map[string]interface{}{
					"type":        "number",
					"description": "Optional timeout in seconds (max 120)",
				},
			},
			"required": []string{"url", "format"},
		},
		Execute: executeWebFetch,
	}
}

func executeWebFetch(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	url, ok := params["url"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("url parameter is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ToolResult{}, fmt.Errorf("URL must start with http:// or https://")
	}
	if strings.HasPrefix(url, "http://") {
		url = "https://" + strings.TrimPrefix(url, "http://")
	}

	format, ok := params["format"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("format parameter is required")
	}

	timeout := DefaultWebTimeout
	if timeoutParam, ok := params["timeout"].(float64); ok {
		timeout = time.Duration(timeoutParam) * time.Second
		if timeout > MaxWebTimeout {
			timeout = MaxWebTimeout
		}
	}

	abort := ctx.Abort
	if abort == nil {
		abort = context.Background()
	}
	reqCtx, cancel := context.WithTimeout(abort, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return ToolResult{}, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "lca/1.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ToolResult{}, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ToolResult{}, fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return ToolResult{}, fmt.Errorf("failed to read response: %v", err)
	}
	if len(body) > MaxResponseSize {
		return ToolResult{}, fmt.Errorf("response too large (exceeds 5MB limit)")
	}

	contentType := resp.Header.Get("Content-Type")
	isHTML := strings.Contains(strings.ToLower(contentType), "text/html")

	var output string
	switch format {
	case "markdown":
		if isHTML {
			output, err = htmlToMarkdown(body)
		} else {
			output = string(body)
		}
	case "text":
		if isHTML {
			output, err = htmlToText(body)
		} else {
			output = string(body)
		}
	default:
		output = string(body)
	}
	if err != nil {
		return ToolResult{}, fmt.Errorf("failed to process HTML: %v", err)
	}

	return ToolResult{
		Title:  fmt.Sprintf("%s (%s)", url, contentType),
		Output: output,
	}, nil
}

// htmlToText extracts visible text content, skipping script and style
// subtrees.
func htmlToText(content []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				skip = true
			}
		}
		if n.Type == html.TextNode && !skip {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)
	return strings.TrimSpace(text.String()), nil
}

// htmlToMarkdown renders a rough markdown view of an HTML document:
// atx headings, fenced code blocks, "-" bullets.
func htmlToMarkdown(content []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", err
	}

	var md strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "meta", "link", "noscript", "iframe":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				md.WriteString("\n" + strings.Repeat("#", int(n.Data[1]-'0')) + " ")
			case "p", "div", "section", "article", "header", "footer", "main":
				md.WriteString("\n")
			case "br":
				md.WriteString("  \n")
			case "hr":
				md.WriteString("\n---\n")
			case "strong", "b":
				md.WriteString("**")
			case "em", "i":
				md.WriteString("*")
			case "code":
				md.WriteString("`")
			case "pre":
				md.WriteString("\n```\n")
			case "blockquote":
				md.WriteString("\n> ")
			case "li":
				md.WriteString("\n- ")
			case "ul", "ol":
				md.WriteString("\n")
			case "a":
				if attrVal(n, "href") != "" {
					md.WriteString("[")
				}
			case "img":
				if src := attrVal(n, "src"); src != "" {
					fmt.Fprintf(&md, "![%s](%s)", attrVal(n, "alt"), src)
				}
				return
			}
		}

		if n.Type == html.TextNode {
			md.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "blockquote", "ul", "ol":
				md.WriteString("\n")
			case "strong", "b":
				md.WriteString("**")
			case "em", "i":
				md.WriteString("*")
			case "code":
				md.WriteString("`")
			case "pre":
				md.WriteString("\n```\n")
			case "a":
				if href := attrVal(n, "href"); href != "" {
					fmt.Fprintf(&md, "](%s)", href)
				}
			}
		}
	}
	walk(doc)

	result := strings.TrimSpace(md.String())
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return result, nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
