package tool

import (
	"fmt"
	"sort"
	"strings"

	"lca/patch"
)

// PatchTool creates the unified diff application tool
func PatchTool() *ToolDefinition {
	return &ToolDefinition{
		ID:   "patch",
		Name: "patch",
		Description: `Applies a unified diff to files in the working directory.

Usage:
- The diff parameter must be a standard unified diff: "--- a/path",
  "+++ b/path" headers followed by "@@ -l,s +l,s @@" hunks.
- Use /dev/null as the old path to create a file, or as the new path
  to delete one.
- Context lines must match the file exactly; a mismatch conflicts that
  file but the remaining files in the diff are still applied.
- Originals of modified files are backed up before writing.`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"diff": map[string]interface{}{
					"type":        "string",
					"description": "The unified diff text to apply",
				},
			},
			"required": []string{"diff"},
		},
		Execute: executePatch,
	}
}

func executePatch(params map[string]interface{}, ctx ToolContext) (ToolResult, error) {
	diff, ok := params["diff"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("diff parameter is required")
	}

	files := patch.NewOSFiles(ctx.WorkDir)
	engine := patch.NewEngine(files, files, patch.Options{
		Backup:    ctx.BackupDir != "",
		BackupDir: ctx.BackupDir,
	})

	outcome, err := engine.ApplyPatchSet(diff)
	if err != nil {
		return ToolResult{}, fmt.Errorf("invalid patch: %v", err)
	}

	output := renderOutcome(outcome)
	result := ToolResult{
		Title:  outcome.Summary(),
		Output: output,
		Metadata: map[string]interface{}{
			"succeeded": outcome.Succeeded,
			"failed":    outcome.Failed,
		},
	}
	if outcome.Failed > 0 {
		result.Error = fmt.Errorf("%d file(s) failed to patch", outcome.Failed)
	}
	return result, nil
}

// renderOutcome lists per-file results in path order, applied first.
func renderOutcome(o *patch.Outcome) string {
	paths := make([]string, 0, len(o.PerFile))
	for p := range o.PerFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		res := o.PerFile[p]
		switch res.Status {
		case patch.StatusApplied:
			fmt.Fprintf(&b, "applied  %s\n", p)
		case patch.StatusConflict:
			fmt.Fprintf(&b, "conflict %s: %s\n", p, res.Reason)
		default:
			fmt.Fprintf(&b, "skipped  %s: %s\n", p, res.Reason)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
