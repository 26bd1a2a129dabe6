package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by FileReader implementations for absent
// files. The engine treats it as an empty pre-image so that diffs
// creating new files apply cleanly.
var ErrNotFound = errors.New("file not found")

// ErrDeclined is returned by ApplyPatchSet when the confirm policy
// rejects the patch set.
var ErrDeclined = errors.New("patch set declined")

// FileReader supplies current file content to the engine.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// FileWriter persists patched content. Remove supports diffs whose new
// path is the no-file sentinel (file deletion).
type FileWriter interface {
	WriteFile(path, content string) error
	Remove(path string) error
}

// Options control engine behavior per instance.
type Options struct {
	// Backup writes the original content of each patched file to
	// BackupDir before overwriting it.
	Backup bool
	// BackupDir receives backup copies, one per patched file, named
	// after the target with path separators flattened.
	BackupDir string
	// Confirm, when set, is asked once per patch set with the target
	// paths after validation and before any file is touched. Returning
	// false aborts the whole set with ErrDeclined. Nil means no
	// confirmation is required.
	Confirm func(paths []string) bool
}

// Engine orchestrates parse, validate, apply and write for a whole
// patch set. Collaborators are injected; the engine performs no path
// containment checks of its own.
type Engine struct {
	reader FileReader
	writer FileWriter
	opts   Options
}

// NewEngine builds an engine over the given collaborators.
func NewEngine(reader FileReader, writer FileWriter, opts Options) *Engine {
	return &Engine{reader: reader, writer: writer, opts: opts}
}

// ApplyPatchSet parses and validates raw upfront, then applies each file
// diff in input order. A malformed set aborts before any file is touched
// and returns the parse or validation error; a configured confirm policy
// is consulted next and a refusal aborts with ErrDeclined, still before
// any I/O. Per-file failures after that point (conflicts, I/O errors) are recorded in the outcome and do
// not block the remaining files; writes are not transactional across
// files.
func (e *Engine) ApplyPatchSet(raw string) (*Outcome, error) {
	diffs, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(diffs); err != nil {
		return nil, err
	}

	if e.opts.Confirm != nil {
		paths := make([]string, len(diffs))
		for i := range diffs {
			paths[i] = diffs[i].Target()
		}
		if !e.opts.Confirm(paths) {
			return nil, ErrDeclined
		}
	}

	out := &Outcome{PerFile: make(map[string]ApplyResult)}
	for i := range diffs {
		d := &diffs[i]
		path := d.Target()
		res := e.applyOne(d, path)
		out.PerFile[path] = res
		if res.Status == StatusApplied {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out, nil
}

func (e *Engine) applyOne(d *FileDiff, path string) ApplyResult {
	var content string
	if !d.IsCreate() {
		var err error
		content, err = e.reader.ReadFile(path)
		if errors.Is(err, ErrNotFound) {
			content = ""
		} else if err != nil {
			return Skip(fmt.Sprintf("read %s: %v", path, err))
		}
	}

	res := Apply(content, d.Hunks)
	if res.Status != StatusApplied {
		return res
	}

	if e.opts.Backup && content != "" {
		if err := e.writeBackup(path, content); err != nil {
			return Skip(fmt.Sprintf("backup %s: %v", path, err))
		}
	}

	if d.IsDelete() {
		if err := e.writer.Remove(path); err != nil {
			return Skip(fmt.Sprintf("delete %s: %v", path, err))
		}
		return res
	}

	if err := e.writer.WriteFile(path, res.NewContent); err != nil {
		return Skip(fmt.Sprintf("write %s: %v", path, err))
	}
	return res
}

func (e *Engine) writeBackup(path, content string) error {
	name := strings.ReplaceAll(filepath.ToSlash(path), "/", "__") + ".orig"
	return e.writer.WriteFile(filepath.Join(e.opts.BackupDir, name), content)
}

// OSFiles is the default collaborator pair, reading and writing relative
// paths against Root.
type OSFiles struct {
	Root string
}

// NewOSFiles returns collaborators rooted at dir (defaulting to ".").
func NewOSFiles(dir string) *OSFiles {
	if dir == "" {
		dir = "."
	}
	return &OSFiles{Root: dir}
}

func (f *OSFiles) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Root, path)
}

// ReadFile implements FileReader, mapping absent files to ErrNotFound.
func (f *OSFiles) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(f.resolve(path))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile implements FileWriter, creating parent directories as needed.
func (f *OSFiles) WriteFile(path, content string) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

// Remove implements FileWriter's delete variant.
func (f *OSFiles) Remove(path string) error {
	return os.Remove(f.resolve(path))
}
