package tool

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testContext(t *testing.T) ToolContext {
	t.Helper()
	dir := t.TempDir()
	return ToolContext{
		SessionID: "test",
		Mode:      "normal",
		WorkDir:   dir,
		LogDir:    filepath.Join(dir, ".agent", "logs"),
		StateFile: filepath.Join(dir, ".agent", "state.json"),
		BackupDir: filepath.Join(dir, ".agent", "backups"),
	}
}

func TestValidateCommand(t *testing.T) {
	cases := []struct {
		command string
		safe    bool
	}{
		{"ls -la", true},
		{"go test ./...", true},
		{"", false},
		{"   ", false},
		{"rm -rf /", false},
		{"sudo rm -r /etc", false},
		{"dd if=/dev/zero of=/dev/sda", false},
		{"chmod 777 /", false},
		{"echo hello && mkfs.ext4 /dev/sdb", false},
	}
	for _, tc := range cases {
		safe, reason := ValidateCommand(tc.command)
		if safe != tc.safe {
			t.Errorf("ValidateCommand(%q) = %v (%s), want %v", tc.command, safe, reason, tc.safe)
		}
	}
}

func TestRegistryPlanModeEchoes(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)
	ctx.Mode = "plan"

	result, err := registry.Execute("bash", map[string]interface{}{"command": "ls"}, ctx)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !strings.HasPrefix(result.Title, "[PLAN]") {
		t.Errorf("plan mode title = %q", result.Title)
	}
	if !strings.Contains(result.Output, "ls") {
		t.Errorf("plan mode output should echo params, got %q", result.Output)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := NewToolRegistry()
	if _, err := registry.Execute("nope", nil, testContext(t)); err == nil {
		t.Error("Execute accepted an unknown tool id")
	}
}

func TestWriteThenRead(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)

	_, err := registry.Execute("write", map[string]interface{}{
		"file_path": "pkg/hello.txt",
		"content":   "one\ntwo\n",
	}, ctx)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	result, err := registry.Execute("read", map[string]interface{}{
		"file_path": "pkg/hello.txt",
	}, ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(result.Output, "1\tone") {
		t.Errorf("read output missing numbered line: %q", result.Output)
	}
}

func TestWriteRejectsEscapingPath(t *testing.T) {
	registry := NewToolRegistry()
	_, err := registry.Execute("write", map[string]interface{}{
		"file_path": "../outside.txt",
		"content":   "x",
	}, testContext(t))
	if err == nil {
		t.Error("write accepted a path outside the working directory")
	}
}

func TestDeleteRequiresRecursiveForDirectories(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)
	if err := os.MkdirAll(filepath.Join(ctx.WorkDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := registry.Execute("delete", map[string]interface{}{"path": "sub"}, ctx); err == nil {
		t.Error("delete removed a directory without recursive=true")
	}
	if _, err := registry.Execute("delete", map[string]interface{}{"path": "sub", "recursive": true}, ctx); err != nil {
		t.Errorf("recursive delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.WorkDir, "sub")); !os.IsNotExist(err) {
		t.Error("directory still present after recursive delete")
	}
}

func TestPatchToolAppliesDiff(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)

	target := filepath.Join(ctx.WorkDir, "greet.txt")
	if err := os.WriteFile(target, []byte("hello\nworld\n"), 0644); err != nil {
		t.Fatal(err)
	}

	diff := strings.Join([]string{
		"--- a/greet.txt",
		"+++ b/greet.txt",
		"@@ -1,2 +1,2 @@",
		" hello",
		"-world",
		"+there",
		"",
	}, "\n")

	result, err := registry.Execute("patch", map[string]interface{}{"diff": diff}, ctx)
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if result.Error != nil {
		t.Fatalf("patch reported failures: %v\n%s", result.Error, result.Output)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\nthere\n" {
		t.Errorf("patched content = %q", data)
	}

	backup := filepath.Join(ctx.BackupDir, "greet.txt.orig")
	if b, err := os.ReadFile(backup); err != nil || string(b) != "hello\nworld\n" {
		t.Errorf("backup = %q, err = %v", b, err)
	}
}

func TestPatchToolReportsConflict(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)

	if err := os.WriteFile(filepath.Join(ctx.WorkDir, "a.txt"), []byte("actual\n"), 0644); err != nil {
		t.Fatal(err)
	}

	diff := strings.Join([]string{
		"--- a/a.txt",
		"+++ b/a.txt",
		"@@ -1,1 +1,1 @@",
		"-expected",
		"+changed",
		"",
	}, "\n")

	result, err := registry.Execute("patch", map[string]interface{}{"diff": diff}, ctx)
	if err != nil {
		t.Fatalf("patch errored instead of reporting conflict: %v", err)
	}
	if result.Error == nil {
		t.Error("conflict not surfaced in result.Error")
	}
	if !strings.Contains(result.Output, "conflict a.txt") {
		t.Errorf("output = %q", result.Output)
	}
}

func TestPatchToolRejectsMalformedDiff(t *testing.T) {
	registry := NewToolRegistry()
	if _, err := registry.Execute("patch", map[string]interface{}{"diff": "--- a/x.txt\n@@ bad @@\n"}, testContext(t)); err == nil {
		t.Error("malformed diff accepted")
	}
}

func TestTodoRoundTrip(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)

	added, err := registry.Execute("todowrite", map[string]interface{}{
		"action": "add",
		"title":  "wire up CI",
	}, ctx)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(added.Output, "#1 wire up CI") {
		t.Errorf("add output = %q", added.Output)
	}

	list, err := registry.Execute("todoread", nil, ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(list.Output, "[ ] #1 wire up CI") {
		t.Errorf("list output = %q", list.Output)
	}

	if _, err := registry.Execute("todowrite", map[string]interface{}{
		"action": "done",
		"id":     float64(1),
	}, ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	list, err = registry.Execute("todoread", nil, ctx)
	if err != nil {
		t.Fatalf("read after done failed: %v", err)
	}
	if !strings.Contains(list.Output, "[x] #1 wire up CI") {
		t.Errorf("completed item missing: %q", list.Output)
	}

	if _, err := registry.Execute("todowrite", map[string]interface{}{
		"action": "done",
		"id":     float64(1),
	}, ctx); err == nil {
		t.Error("completing an already-done item should fail")
	}
}

func TestBashRunsInWorkDir(t *testing.T) {
	registry := NewToolRegistry()
	ctx := testContext(t)
	if err := os.MkdirAll(ctx.LogDir, 0755); err != nil {
		t.Fatal(err)
	}

	result, err := registry.Execute("bash", map[string]interface{}{"command": "pwd"}, ctx)
	if err != nil {
		t.Fatalf("bash failed: %v", err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Output))
	if err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(ctx.WorkDir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}

	log, err := os.ReadFile(filepath.Join(ctx.LogDir, "commands.log"))
	if err != nil {
		t.Fatalf("command log not written: %v", err)
	}
	if !strings.Contains(string(log), "cmd=pwd") {
		t.Errorf("log = %q", log)
	}
}

func TestBashRejectsDangerousCommand(t *testing.T) {
	registry := NewToolRegistry()
	if _, err := registry.Execute("bash", map[string]interface{}{"command": "rm -rf /"}, testContext(t)); err == nil {
		t.Error("dangerous command accepted in normal mode")
	}
}

func TestWebFetchValidatesURL(t *testing.T) {
	registry := NewToolRegistry()
	if _, err := registry.Execute("webfetch", map[string]interface{}{
		"url":    "ftp://example.com",
		"format": "text",
	}, testContext(t)); err == nil {
		t.Error("non-http URL accepted")
	}
}

func TestHTMLConversion(t *testing.T) {
	page := []byte(`<html><head><style>p{}</style><script>x()</script></head>` +
		`<body><h1>Title</h1><p>Hello <strong>world</strong>.</p>` +
		`<ul><li>one</li><li>two</li></ul>` +
		`<p><a href="https://example.com">link</a></p></body></html>`)

	text, err := htmlToText(page)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Hello world.") || strings.Contains(text, "x()") {
		t.Errorf("htmlToText = %q", text)
	}

	md, err := htmlToMarkdown(page)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Title", "**world**", "- one", "[link](https://example.com)"} {
		if !strings.Contains(md, want) {
			t.Errorf("htmlToMarkdown missing %q in %q", want, md)
		}
	}
}
