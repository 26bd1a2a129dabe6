// Package analyze scans a project tree and produces a code map:
// per-file language and size stats, Go symbols, and a CODEMAP.md
// summary written with the LLM's help.
package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/boyter/gocodewalker"
)

// Symbol is a named declaration found in a source file.
type Symbol struct {
	Kind string // "func", "method", "type"
	Name string
	File string
	Line int
	Doc  string
}

// FileInfo is one scanned file.
type FileInfo struct {
	Path     string
	Size     int64
	Language string
}

// Report is the result of one project scan.
type Report struct {
	Root      string
	ScannedAt time.Time
	Files     []FileInfo
	Languages map[string]int
	Symbols   []Symbol
	TotalSize int64
}

// Scanner walks a project tree. Beyond gitignore handling (done by the
// walker) it skips anything matching IgnoreGlobs.
type Scanner struct {
	IgnoreGlobs []string
}

// defaultIgnores covers directories the walker's gitignore pass misses
// in repos without a .gitignore.
var defaultIgnores = []string{
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/.git/**",
	"**/vendor/**",
}

// NewScanner returns a scanner with the default ignore set plus extras.
func NewScanner(extraIgnores ...string) *Scanner {
	return &Scanner{IgnoreGlobs: append(append([]string{}, defaultIgnores...), extraIgnores...)}
}

// Scan walks root and builds a report. Unreadable files are skipped,
// not fatal.
func (s *Scanner) Scan(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	walker := gocodewalker.NewFileWalker(root, fileListQueue)
	walker.ExcludeDirectory = []string{".git"}

	errChan := make(chan error)
	go func() {
		errChan <- walker.Start()
		close(errChan)
	}()

	report := &Report{
		Root:      root,
		ScannedAt: time.Now(),
		Languages: make(map[string]int),
	}

	for f := range fileListQueue {
		rel, err := filepath.Rel(root, f.Location)
		if err != nil {
			rel = f.Location
		}
		rel = filepath.ToSlash(rel)
		if s.ignored(rel) {
			continue
		}

		stat, err := os.Stat(f.Location)
		if err != nil {
			continue
		}

		lang := DetectLanguage(rel)
		report.Files = append(report.Files, FileInfo{Path: rel, Size: stat.Size(), Language: lang})
		report.TotalSize += stat.Size()
		if lang != "" {
			report.Languages[lang]++
		}
		if lang == "Go" && !strings.HasSuffix(rel, "_test.go") {
			report.Symbols = append(report.Symbols, goSymbols(f.Location, rel)...)
		}
	}

	if err := <-errChan; err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	return report, nil
}

func (s *Scanner) ignored(rel string) bool {
	for _, glob := range s.IgnoreGlobs {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// languages maps file extensions to display names.
var languages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".jsx":   "React JSX",
	".tsx":   "React TSX",
	".html":  "HTML",
	".css":   "CSS",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".md":    "Markdown",
	".txt":   "Text",
	".sh":    "Shell",
	".bash":  "Shell",
	".java":  "Java",
	".c":     "C",
	".h":     "C/C++ Header",
	".cpp":   "C++",
	".cc":    "C++",
	".hpp":   "C++ Header",
	".cs":    "C#",
	".php":   "PHP",
	".rb":    "Ruby",
	".rs":    "Rust",
	".swift": "Swift",
	".kt":    "Kotlin",
	".sql":   "SQL",
	".proto": "Protobuf",
	".lua":   "Lua",
	".zig":   "Zig",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".hs":    "Haskell",
	".vue":   "Vue",
}

// DetectLanguage maps a filename to a language name, or "" when
// unknown.
func DetectLanguage(name string) string {
	return languages[strings.ToLower(filepath.Ext(name))]
}

// Summarizer produces the natural-language portion of the code map.
type Summarizer interface {
	AnalyzeProject(ctx context.Context, projectInfo string) (string, error)
}

// BuildContext renders the report into the prompt context fed to the
// model. Symbol listing is capped to keep the prompt bounded.
func BuildContext(r *Report) string {
	const maxSymbols = 50

	var b strings.Builder
	fmt.Fprintf(&b, "Project Analysis Results:\n")
	fmt.Fprintf(&b, "- Path: %s\n", r.Root)
	fmt.Fprintf(&b, "- Total Files: %d\n", len(r.Files))
	fmt.Fprintf(&b, "- Total Size: %d bytes\n", r.TotalSize)
	fmt.Fprintf(&b, "- Symbols: %d\n\n", len(r.Symbols))

	b.WriteString("Files by Language:\n")
	langs := make([]string, 0, len(r.Languages))
	for l := range r.Languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		fmt.Fprintf(&b, "- %s: %d files\n", l, r.Languages[l])
	}

	b.WriteString("\nSymbols:\n")
	for i, sym := range r.Symbols {
		if i == maxSymbols {
			fmt.Fprintf(&b, "- ... and %d more symbols\n", len(r.Symbols)-maxSymbols)
			break
		}
		fmt.Fprintf(&b, "- %s: %s (%s:%d)\n", sym.Kind, sym.Name, sym.File, sym.Line)
	}
	return b.String()
}

// WriteCodeMap generates CODEMAP.md under root using the summarizer.
func WriteCodeMap(ctx context.Context, s Summarizer, r *Report) (string, error) {
	summary, err := s.AnalyzeProject(ctx, BuildContext(r))
	if err != nil {
		return "", fmt.Errorf("generating code map: %w", err)
	}

	var b strings.Builder
	b.WriteString("# CODEMAP\n\n")
	fmt.Fprintf(&b, "Generated %s for %s\n\n", r.ScannedAt.Format("2006-01-02 15:04"), r.Root)
	b.WriteString(summary)
	if !strings.HasSuffix(summary, "\n") {
		b.WriteString("\n")
	}

	path := filepath.Join(r.Root, "CODEMAP.md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
