package analyze

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanCountsLanguages(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":              "package main\n\nfunc main() {}\n",
		"lib/util.py":          "def f():\n    pass\n",
		"README.md":            "# readme\n",
		"docs/notes.md":        "notes\n",
		"node_modules/x/y.js":  "ignored",
		"__pycache__/m.cpython-312.pyc": "ignored",
	})

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if report.Languages["Go"] != 1 {
		t.Errorf("Go count = %d, want 1", report.Languages["Go"])
	}
	if report.Languages["Python"] != 1 {
		t.Errorf("Python count = %d, want 1", report.Languages["Python"])
	}
	if report.Languages["Markdown"] != 2 {
		t.Errorf("Markdown count = %d, want 2", report.Languages["Markdown"])
	}
	for _, f := range report.Files {
		if strings.Contains(f.Path, "node_modules") || strings.Contains(f.Path, "__pycache__") {
			t.Errorf("ignored path scanned: %s", f.Path)
		}
	}
	if report.TotalSize == 0 {
		t.Error("TotalSize not accumulated")
	}
}

func TestScanExtractsGoSymbols(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"widget.go": strings.Join([]string{
			"package widget",
			"",
			"// Widget is a thing.",
			"type Widget struct{}",
			"",
			"// New builds a Widget.",
			"func New() *Widget { return &Widget{} }",
			"",
			"func (w *Widget) Render() string { return \"\" }",
		}, "\n"),
		"widget_test.go": "package widget\n\nfunc helper() {}\n",
	})

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	byName := make(map[string]Symbol)
	for _, s := range report.Symbols {
		byName[s.Name] = s
	}

	if s, ok := byName["Widget"]; !ok || s.Kind != "type" || s.Doc != "Widget is a thing." {
		t.Errorf("Widget symbol = %+v", s)
	}
	if s, ok := byName["New"]; !ok || s.Kind != "func" {
		t.Errorf("New symbol = %+v", s)
	}
	if s, ok := byName["Widget.Render"]; !ok || s.Kind != "method" {
		t.Errorf("Render symbol = %+v", s)
	}
	if _, ok := byName["helper"]; ok {
		t.Error("symbols from _test.go files should be skipped")
	}
}

func TestScanRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewScanner().Scan(file); err == nil {
		t.Error("Scan accepted a plain file as root")
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"main.go":    "Go",
		"app.PY":     "Python",
		"style.css":  "CSS",
		"Makefile":   "",
		"weird.xyz9": "",
	}
	for name, want := range cases {
		if got := DetectLanguage(name); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

type fakeSummarizer struct {
	gotContext string
	reply      string
}

func (f *fakeSummarizer) AnalyzeProject(_ context.Context, info string) (string, error) {
	f.gotContext = info
	return f.reply, nil
}

func TestWriteCodeMap(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	fake := &fakeSummarizer{reply: "A tiny Go program."}
	path, err := WriteCodeMap(context.Background(), fake, report)
	if err != nil {
		t.Fatalf("WriteCodeMap returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# CODEMAP") {
		t.Errorf("code map header missing: %q", content)
	}
	if !strings.Contains(content, "A tiny Go program.") {
		t.Error("summary not embedded in code map")
	}
	if !strings.Contains(fake.gotContext, "Files by Language:") {
		t.Errorf("prompt context = %q", fake.gotContext)
	}
}
