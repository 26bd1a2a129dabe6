package tool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	MaxOutputLength = 30000
	DefaultTimeout  = 2 * time.Minute
	MaxTimeout      = 10 * time.Minute
)

// dangerousPatterns blocks commands the agent must never run without
// the bypass mode being active.
var dangerousPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs",
	"dd if=/dev/zero",
	"fdisk",
	"parted",
	"chmod 777",
	"chown root",
	"sudo rm",
}

// ValidateCommand reports whether a command is safe to execute and, if
// not, which pattern tripped.
func ValidateCommand(command string) (bool, string) {
	if strings.TrimSpace(command) == "" {
		return false, "empty command"
	}
	lower := strings.ToLower(command)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return false, fmt.Sprintf("dangerous pattern detected: %s", pattern)
		}
	}
	return true, ""
}

// BashTool creates the shell command execution tool
func BashTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "bash",
		Name: "bash",
		Description: `Execute shell commands in the project working directory.

Usage:
- The command argument is required
- You can specify an optional timeout in milliseconds (up to 600000ms / 10 minutes)
- If the output exceeds 30000 characters, output will be truncated before being returned
- Use '&&' to chain commands that depend on each other
- DO NOT use commands that require interactive input`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "The command to execute",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Clear, concise description of what this command does in 5-10 words",
				},
				"timeout": map[string]interface{}{
					"type":        "number",
					"description": "Optional timeout in milliseconds (max 600000)",
				},
			},
			"required": []string{"command"},
		},
		Execute: executeBash,
	}
}

func executeBash(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	command, ok := params["command"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("command parameter is required")
	}

	description, _ := params["description"].(string)

	if safe, reason := ValidateCommand(command); !safe && ctx.Mode != "bypass" {
		return ToolResult{}, fmt.Errorf("command rejected: %s", reason)
	}

	timeout := DefaultTimeout
	if timeoutParam, ok := params["timeout"].(float64); ok {
		timeout = time.Duration(timeoutParam) * time.Millisecond
		if timeout > MaxTimeout {
			timeout = MaxTimeout
		}
	}

	abort := ctx.Abort
	if abort == nil {
		abort = context.Background()
	}
	execCtx, cancel := context.WithTimeout(abort, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "bash", "-c", command)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if len(output) > 0 {
			output += "\n"
		}
		output += stderr.String()
	}

	if len(output) > MaxOutputLength {
		output = output[:MaxOutputLength] + "\n... (output truncated)"
	}

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	logCommand(ctx, command, exitCode, output)

	title := description
	if title == "" {
		title = command
	}

	if err != nil {
		return ToolResult{
			Title:  title,
			Output: fmt.Sprintf("Command failed: %v\n\nOutput:\n%s", err, output),
			Error:  err,
		}, nil
	}

	return ToolResult{
		Title:  title,
		Output: output,
	}, nil
}

// logCommand appends an execution record to the session command log.
// Logging failures are silent: the log is an audit aid, not a
// precondition.
func logCommand(ctx ToolContext, command string, exitCode int, output string) {
	if ctx.LogDir == "" {
		return
	}
	f, err := os.OpenFile(ctx.LogDir+"/commands.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[%s] exit=%d cmd=%s\n", time.Now().Format(time.RFC3339), exitCode, command)
	if output != "" {
		fmt.Fprintf(f, "%s\n", output)
	}
	fmt.Fprintln(f, strings.Repeat("-", 50))
}
