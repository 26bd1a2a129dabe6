package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports unrecoverable diff syntax at a 1-based input line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
}

// hunkHeaderRe matches `@@ -start[,count] +start[,count] @@`; a missing
// count defaults to 1 (single-line hunk).
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse tokenizes raw unified-diff text into per-file diffs, preserving
// hunk order. Empty input yields an empty slice, not an error. A file
// header with no hunks is tolerated here and rejected by Validate.
func Parse(raw string) ([]FileDiff, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var (
		diffs    []FileDiff
		current  *FileDiff
		openHunk bool
	)

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lineNo := i + 1

		switch {
		case strings.HasPrefix(line, "--- "):
			if current != nil {
				diffs = append(diffs, *current)
			}
			current = &FileDiff{OldPath: parseHeaderPath(line[4:], "a/")}
			openHunk = false

		case strings.HasPrefix(line, "+++ "):
			if current == nil {
				return nil, &ParseError{Line: lineNo, Reason: "'+++' header with no preceding '---'"}
			}
			current.NewPath = parseHeaderPath(line[4:], "b/")
			openHunk = false

		case strings.HasPrefix(line, "@@"):
			if current == nil {
				return nil, &ParseError{Line: lineNo, Reason: "hunk header outside of any file diff"}
			}
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Reason: err.Error()}
			}
			current.Hunks = append(current.Hunks, h)
			openHunk = true

		default:
			if !openHunk || current == nil || len(current.Hunks) == 0 {
				continue
			}
			hunk := &current.Hunks[len(current.Hunks)-1]
			switch {
			case strings.HasPrefix(line, " "):
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: Context, Text: line[1:]})
			case strings.HasPrefix(line, "+"):
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: Added, Text: line[1:]})
			case strings.HasPrefix(line, "-"):
				hunk.Lines = append(hunk.Lines, HunkLine{Kind: Removed, Text: line[1:]})
			default:
				// Anything else ("\ No newline at end of file", blank
				// separators) closes the hunk body but not the file.
				openHunk = false
			}
		}
	}

	if current != nil {
		diffs = append(diffs, *current)
	}
	return diffs, nil
}

// parseHeaderPath strips the conventional a/ or b/ prefix and any
// trailing tab-separated timestamp from a file header path.
func parseHeaderPath(s, prefix string) string {
	if tab := strings.IndexByte(s, '\t'); tab >= 0 {
		s = s[:tab]
	}
	s = strings.TrimSpace(s)
	if s == DevNull {
		return s
	}
	return strings.TrimPrefix(s, prefix)
}

func parseHunkHeader(line string) (Hunk, error) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, fmt.Errorf("malformed hunk header %q", line)
	}
	nums := [4]int{}
	for i, s := range m[1:5] {
		if s == "" {
			nums[i] = 1
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return Hunk{}, fmt.Errorf("hunk header %q: %v", line, err)
		}
		nums[i] = n
	}
	return Hunk{
		OldStart: nums[0],
		OldCount: nums[1],
		NewStart: nums[2],
		NewCount: nums[3],
	}, nil
}
