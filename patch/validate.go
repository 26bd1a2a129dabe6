package patch

import "fmt"

// ValidationError reports a structurally inconsistent file diff.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid diff for %s: %s", e.Path, e.Reason)
}

// Validate checks structural consistency of parsed diffs before any file
// is touched: each file must carry at least one hunk, each hunk's header
// counts must match its actual line tally, and starts must be positive
// wherever the matching count is nonzero. Pure check, no I/O.
func Validate(diffs []FileDiff) error {
	for i := range diffs {
		d := &diffs[i]
		path := d.Target()
		if path == "" {
			path = fmt.Sprintf("diff #%d", i+1)
		}
		if len(d.Hunks) == 0 {
			return &ValidationError{Path: path, Reason: "no hunks"}
		}
		for j, h := range d.Hunks {
			oldLines, newLines := 0, 0
			for _, l := range h.Lines {
				switch l.Kind {
				case Context:
					oldLines++
					newLines++
				case Removed:
					oldLines++
				case Added:
					newLines++
				}
			}
			if oldLines != h.OldCount {
				return &ValidationError{
					Path:   path,
					Reason: fmt.Sprintf("hunk %d declares %d old lines but has %d", j+1, h.OldCount, oldLines),
				}
			}
			if newLines != h.NewCount {
				return &ValidationError{
					Path:   path,
					Reason: fmt.Sprintf("hunk %d declares %d new lines but has %d", j+1, h.NewCount, newLines),
				}
			}
			if h.OldCount > 0 && h.OldStart <= 0 {
				return &ValidationError{
					Path:   path,
					Reason: fmt.Sprintf("hunk %d has non-positive old start %d", j+1, h.OldStart),
				}
			}
			if h.NewCount > 0 && h.NewStart <= 0 {
				return &ValidationError{
					Path:   path,
					Reason: fmt.Sprintf("hunk %d has non-positive new start %d", j+1, h.NewStart),
				}
			}
		}
	}
	return nil
}
