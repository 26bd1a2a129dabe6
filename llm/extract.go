package llm

import (
	"regexp"
	"strings"
)

// Models habitually wrap output in markdown fences even when told not
// to; these helpers recover the payload before it reaches the patch
// engine or the filesystem.

var (
	diffFenceRe = regexp.MustCompile("(?s)```(?:diff|patch)\\n(.*?)```")
	codeFenceRe = regexp.MustCompile("(?s)```\\w*\\n(.*?)```")
)

// ExtractDiff returns the unified diff contained in a response. A
// ```diff fence wins, then any fence whose body looks like a diff, then
// the raw text trimmed.
func ExtractDiff(response string) string {
	if m := diffFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimRight(m[1], "\n") + "\n"
	}
	for _, m := range codeFenceRe.FindAllStringSubmatch(response, -1) {
		if looksLikeDiff(m[1]) {
			return strings.TrimRight(m[1], "\n") + "\n"
		}
	}
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return ""
	}
	return trimmed + "\n"
}

func looksLikeDiff(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "@@ ") {
			return true
		}
	}
	return false
}

// ExtractCode returns the first fenced code block, or the whole
// response when no fence is present.
func ExtractCode(response string) string {
	if m := codeFenceRe.FindStringSubmatch(response); m != nil {
		return m[1]
	}
	return strings.TrimSpace(response) + "\n"
}
