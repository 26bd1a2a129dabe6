// Package patch parses and applies unified-diff text.
//
// The pipeline is Parse -> Validate -> Apply, with Engine orchestrating
// the three over injected file collaborators. Parse and Validate never
// touch the filesystem; Apply is a pure function over file content.
package patch

import "fmt"

// DevNull is the sentinel path denoting "no file" in a diff header.
// As an old path it marks file creation, as a new path file deletion.
const DevNull = "/dev/null"

// LineKind classifies a single hunk body line.
type LineKind int

const (
	// Context lines appear in both the pre- and post-image.
	Context LineKind = iota
	// Added lines appear only in the post-image.
	Added
	// Removed lines appear only in the pre-image.
	Removed
)

func (k LineKind) String() string {
	switch k {
	case Context:
		return "context"
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// HunkLine is one line of a hunk body, immutable after parse.
type HunkLine struct {
	Kind LineKind
	Text string
}

// Hunk describes one contiguous region of changes. OldStart and NewStart
// are 1-based line numbers in the pre- and post-image respectively.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []HunkLine
}

// FileDiff holds all hunks targeting a single file.
type FileDiff struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// Target returns the path the diff operates on. Renames are not handled
// specially: the new path wins unless it is the no-file sentinel.
func (d *FileDiff) Target() string {
	if d.NewPath != "" && d.NewPath != DevNull {
		return d.NewPath
	}
	return d.OldPath
}

// IsCreate reports whether the diff creates a new file.
func (d *FileDiff) IsCreate() bool { return d.OldPath == DevNull }

// IsDelete reports whether the diff deletes the target file.
func (d *FileDiff) IsDelete() bool { return d.NewPath == DevNull }

// Status is the per-file outcome of an apply attempt.
type Status int

const (
	// StatusApplied means the new content was produced successfully.
	StatusApplied Status = iota
	// StatusConflict means a hunk's pre-image did not match the file.
	StatusConflict
	// StatusSkipped means the file was not attempted (e.g. read failure).
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusConflict:
		return "conflict"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// ApplyResult is the tagged per-file result. NewContent is only
// meaningful when Status is StatusApplied; HunkIndex identifies the
// offending hunk when Status is StatusConflict.
type ApplyResult struct {
	Status     Status
	NewContent string
	Reason     string
	HunkIndex  int
}

// Applied builds a successful result carrying the new file content.
func Applied(content string) ApplyResult {
	return ApplyResult{Status: StatusApplied, NewContent: content, HunkIndex: -1}
}

// Conflicted builds a conflict result for the hunk at index i.
func Conflicted(reason string, i int) ApplyResult {
	return ApplyResult{Status: StatusConflict, Reason: reason, HunkIndex: i}
}

// Skip builds a skipped result with the given reason.
func Skip(reason string) ApplyResult {
	return ApplyResult{Status: StatusSkipped, Reason: reason, HunkIndex: -1}
}

// Outcome aggregates per-file results for one patch set.
type Outcome struct {
	PerFile   map[string]ApplyResult
	Succeeded int
	Failed    int
}

// Summary renders the "3 of 5 files patched" view of the outcome.
func (o *Outcome) Summary() string {
	total := o.Succeeded + o.Failed
	return fmt.Sprintf("%d of %d files patched", o.Succeeded, total)
}
