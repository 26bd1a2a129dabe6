package patch

import (
	"fmt"
	"strings"
)

// Apply patches original with the given hunks and returns the new
// content, or a conflict the moment a hunk's pre-image fails to match.
// Hunks are taken in the order given and are expected in ascending
// OldStart order; positions of later hunks are adjusted by the running
// line-count delta of earlier ones. The function is pure: original is
// never mutated, and the first conflict aborts with no partial result.
func Apply(original string, hunks []Hunk) ApplyResult {
	lines, trailingNewline := splitLines(original)

	offset := 0
	for i, h := range hunks {
		start := h.OldStart - 1 + offset
		if h.OldCount == 0 {
			// Pure insertion: nothing to match, clamp into range.
			if start < 0 {
				start = 0
			}
			if start > len(lines) {
				return Conflicted(fmt.Sprintf("insertion point %d beyond end of file (%d lines)", h.OldStart, len(lines)), i)
			}
		} else if start < 0 || start+h.OldCount > len(lines) {
			return Conflicted(fmt.Sprintf("hunk spans lines %d-%d but file has %d lines", start+1, start+h.OldCount, len(lines)), i)
		}

		// Verify the pre-image line by line before touching anything.
		pos := start
		for _, l := range h.Lines {
			if l.Kind == Added {
				continue
			}
			if lines[pos] != l.Text {
				return Conflicted(fmt.Sprintf("context mismatch at line %d: expected %q, found %q", pos+1, l.Text, lines[pos]), i)
			}
			pos++
		}

		replacement := make([]string, 0, h.NewCount)
		for _, l := range h.Lines {
			if l.Kind == Removed {
				continue
			}
			replacement = append(replacement, l.Text)
		}

		patched := make([]string, 0, len(lines)+len(replacement)-h.OldCount)
		patched = append(patched, lines[:start]...)
		patched = append(patched, replacement...)
		patched = append(patched, lines[start+h.OldCount:]...)
		lines = patched

		offset += h.NewCount - h.OldCount
	}

	return Applied(joinLines(lines, trailingNewline))
}

// splitLines breaks content into lines while remembering whether the
// input ended with a newline, so joinLines can restore the convention.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	trailing := strings.HasSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	if trailing {
		lines = lines[:len(lines)-1]
	}
	return lines, trailing
}

func joinLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	joined := strings.Join(lines, "\n")
	if trailingNewline {
		joined += "\n"
	}
	return joined
}
