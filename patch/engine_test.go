package patch

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// memFiles is an in-memory collaborator pair for engine tests.
type memFiles struct {
	files    map[string]string
	failRead map[string]error
	writes   []string
}

func newMemFiles(files map[string]string) *memFiles {
	if files == nil {
		files = make(map[string]string)
	}
	return &memFiles{files: files, failRead: make(map[string]error)}
}

func (m *memFiles) ReadFile(path string) (string, error) {
	if err, ok := m.failRead[path]; ok {
		return "", err
	}
	content, ok := m.files[path]
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}

func (m *memFiles) WriteFile(path, content string) error {
	m.files[path] = content
	m.writes = append(m.writes, path)
	return nil
}

func (m *memFiles) Remove(path string) error {
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("remove %s: no such file", path)
	}
	delete(m.files, path)
	return nil
}

func TestApplyPatchSetPartialFailure(t *testing.T) {
	// The first file's hunk conflicts, the second applies cleanly; the
	// second must still land on disk.
	raw := strings.Join([]string{
		"--- a/one.txt",
		"+++ b/one.txt",
		"@@ -1,1 +1,1 @@",
		"-expected",
		"+changed",
		"--- a/two.txt",
		"+++ b/two.txt",
		"@@ -1,1 +1,1 @@",
		"-hello",
		"+goodbye",
	}, "\n")

	fs := newMemFiles(map[string]string{
		"one.txt": "drifted\n",
		"two.txt": "hello\n",
	})
	engine := NewEngine(fs, fs, Options{})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 || out.Failed != 1 {
		t.Errorf("outcome = %d succeeded / %d failed, want 1/1", out.Succeeded, out.Failed)
	}
	if res := out.PerFile["one.txt"]; res.Status != StatusConflict {
		t.Errorf("one.txt status = %s, want conflict", res.Status)
	}
	if res := out.PerFile["two.txt"]; res.Status != StatusApplied {
		t.Errorf("two.txt status = %s, want applied", res.Status)
	}
	if fs.files["two.txt"] != "goodbye\n" {
		t.Errorf("two.txt content = %q, want %q", fs.files["two.txt"], "goodbye\n")
	}
	if fs.files["one.txt"] != "drifted\n" {
		t.Errorf("one.txt was modified despite the conflict: %q", fs.files["one.txt"])
	}
}

func TestApplyPatchSetCreatesFile(t *testing.T) {
	raw := strings.Join([]string{
		"--- /dev/null",
		"+++ b/fresh/new.txt",
		"@@ -0,0 +1,2 @@",
		"+alpha",
		"+beta",
	}, "\n")

	fs := newMemFiles(nil)
	engine := NewEngine(fs, fs, Options{})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 || out.Failed != 0 {
		t.Fatalf("outcome = %d/%d, want 1/0", out.Succeeded, out.Failed)
	}
	if fs.files["fresh/new.txt"] != "alpha\nbeta" {
		t.Errorf("created content = %q, want added lines joined by newlines", fs.files["fresh/new.txt"])
	}
}

func TestApplyPatchSetDeletesFile(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/gone.txt",
		"+++ /dev/null",
		"@@ -1,2 +0,0 @@",
		"-first",
		"-second",
	}, "\n")

	fs := newMemFiles(map[string]string{"gone.txt": "first\nsecond\n"})
	engine := NewEngine(fs, fs, Options{})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 {
		t.Fatalf("outcome = %+v, want 1 success", out)
	}
	if _, ok := fs.files["gone.txt"]; ok {
		t.Error("gone.txt still exists after deletion diff")
	}
}

func TestApplyPatchSetAbsentFileIsEmptyPreImage(t *testing.T) {
	// A patch against a missing file applies as if the file were empty.
	raw := strings.Join([]string{
		"--- a/missing.txt",
		"+++ b/missing.txt",
		"@@ -0,0 +1,1 @@",
		"+created anyway",
	}, "\n")

	fs := newMemFiles(nil)
	engine := NewEngine(fs, fs, Options{})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 {
		t.Fatalf("outcome = %+v, want 1 success", out)
	}
	if fs.files["missing.txt"] != "created anyway" {
		t.Errorf("content = %q", fs.files["missing.txt"])
	}
}

func TestApplyPatchSetReadErrorRecordedPerFile(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/locked.txt",
		"+++ b/locked.txt",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
		"--- a/ok.txt",
		"+++ b/ok.txt",
		"@@ -1,1 +1,1 @@",
		"-x",
		"+y",
	}, "\n")

	fs := newMemFiles(map[string]string{"ok.txt": "x\n"})
	fs.failRead["locked.txt"] = errors.New("permission denied")
	engine := NewEngine(fs, fs, Options{})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if res := out.PerFile["locked.txt"]; res.Status != StatusSkipped {
		t.Errorf("locked.txt status = %s, want skipped", res.Status)
	}
	if res := out.PerFile["ok.txt"]; res.Status != StatusApplied {
		t.Errorf("ok.txt status = %s, want applied", res.Status)
	}
}

func TestApplyPatchSetMalformedInputAbortsBeforeIO(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/good.txt",
		"+++ b/good.txt",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
		"@@ bogus header @@",
	}, "\n")

	fs := newMemFiles(map[string]string{"good.txt": "a\n"})
	engine := NewEngine(fs, fs, Options{})

	_, err := engine.ApplyPatchSet(raw)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(fs.writes) != 0 {
		t.Errorf("files were written despite phase-one failure: %v", fs.writes)
	}
	if fs.files["good.txt"] != "a\n" {
		t.Error("good.txt was modified despite phase-one failure")
	}
}

func TestApplyPatchSetValidationFailureAborts(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
	}, "\n")

	fs := newMemFiles(map[string]string{"f.txt": "a\n"})
	engine := NewEngine(fs, fs, Options{})

	_, err := engine.ApplyPatchSet(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestApplyPatchSetBackup(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/notes.txt",
		"+++ b/notes.txt",
		"@@ -1,1 +1,1 @@",
		"-before",
		"+after",
	}, "\n")

	fs := newMemFiles(map[string]string{"notes.txt": "before\n"})
	engine := NewEngine(fs, fs, Options{Backup: true, BackupDir: ".backups"})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 {
		t.Fatalf("outcome = %+v, want 1 success", out)
	}
	backup, ok := fs.files[".backups/notes.txt.orig"]
	if !ok {
		t.Fatalf("no backup written; files: %v", fs.writes)
	}
	if backup != "before\n" {
		t.Errorf("backup content = %q, want original", backup)
	}
	if fs.files["notes.txt"] != "after\n" {
		t.Errorf("patched content = %q", fs.files["notes.txt"])
	}
}

func TestApplyPatchSetConfirmDeclined(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/one.txt",
		"+++ b/one.txt",
		"@@ -1,1 +1,1 @@",
		"-hello",
		"+goodbye",
		"--- /dev/null",
		"+++ b/two.txt",
		"@@ -0,0 +1,1 @@",
		"+fresh",
	}, "\n")

	fs := newMemFiles(map[string]string{"one.txt": "hello\n"})
	var asked []string
	engine := NewEngine(fs, fs, Options{
		Confirm: func(paths []string) bool {
			asked = paths
			return false
		},
	})

	_, err := engine.ApplyPatchSet(raw)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if len(asked) != 2 || asked[0] != "one.txt" || asked[1] != "two.txt" {
		t.Errorf("confirm saw paths %v", asked)
	}
	if len(fs.writes) != 0 {
		t.Errorf("files were written despite the refusal: %v", fs.writes)
	}
	if fs.files["one.txt"] != "hello\n" {
		t.Error("one.txt was modified despite the refusal")
	}
}

func TestApplyPatchSetConfirmApproved(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/one.txt",
		"+++ b/one.txt",
		"@@ -1,1 +1,1 @@",
		"-hello",
		"+goodbye",
	}, "\n")

	fs := newMemFiles(map[string]string{"one.txt": "hello\n"})
	engine := NewEngine(fs, fs, Options{
		Confirm: func([]string) bool { return true },
	})

	out, err := engine.ApplyPatchSet(raw)
	if err != nil {
		t.Fatalf("ApplyPatchSet returned error: %v", err)
	}
	if out.Succeeded != 1 {
		t.Fatalf("outcome = %+v, want 1 success", out)
	}
	if fs.files["one.txt"] != "goodbye\n" {
		t.Errorf("content = %q", fs.files["one.txt"])
	}
}

func TestOutcomeSummary(t *testing.T) {
	out := &Outcome{Succeeded: 3, Failed: 2}
	if got := out.Summary(); got != "3 of 5 files patched" {
		t.Errorf("Summary() = %q", got)
	}
}
