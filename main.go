// Command lca is a local coding agent: it analyzes a project, talks to
// an LLM, and applies the unified diffs the model produces.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"lca/analyze"
	"lca/config"
	"lca/llm"
	"lca/patch"
	"lca/state"
	"lca/tool"
)

const version = "0.1.0"

func main() {
	var cfg *config.Config

	app := &cli.App{
		Name:    "lca",
		Usage:   "Local coding agent with a unified-diff patch engine",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Run in interactive chat mode",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			return cfg.EnsureDirectories()
		},
		Action: func(c *cli.Context) error {
			if c.Bool("interactive") {
				return runChat(cfg)
			}
			return cli.ShowAppHelp(c)
		},
		Commands: []*cli.Command{
			{
				Name:  "whoami",
				Usage: "Show the agent configuration and session state",
				Action: func(c *cli.Context) error {
					return cmdWhoami(cfg)
				},
			},
			{
				Name:  "analyze",
				Usage: "Scan the project and record its structure",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "map",
						Usage: "Also generate CODEMAP.md via the LLM",
					},
				},
				Action: func(c *cli.Context) error {
					return cmdAnalyze(c.Context, cfg, c.Bool("map"))
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about the project",
				ArgsUsage: "<question>",
				Action: func(c *cli.Context) error {
					return cmdAsk(c.Context, cfg, strings.Join(c.Args().Slice(), " "))
				},
			},
			{
				Name:      "plan",
				Usage:     "Create an implementation plan for a goal",
				ArgsUsage: "<goal>",
				Action: func(c *cli.Context) error {
					return cmdPlan(c.Context, cfg, strings.Join(c.Args().Slice(), " "))
				},
			},
			{
				Name:  "todo",
				Usage: "Manage the persistent task list",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add a task",
						ArgsUsage: "<title>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "desc", Usage: "Longer description"},
						},
						Action: func(c *cli.Context) error {
							return cmdTodoAdd(cfg, strings.Join(c.Args().Slice(), " "), c.String("desc"))
						},
					},
					{
						Name:  "list",
						Usage: "List tasks",
						Action: func(c *cli.Context) error {
							return cmdTodoList(cfg)
						},
					},
					{
						Name:      "done",
						Usage:     "Complete a task by id",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							return cmdTodoDone(cfg, c.Args().First())
						},
					},
				},
			},
			{
				Name:      "run",
				Usage:     "Run a shell command in the working directory",
				ArgsUsage: "<command>",
				Flags:     []cli.Flag{yesFlag()},
				Action: func(c *cli.Context) error {
					return cmdRun(c.Context, cfg, strings.Join(c.Args().Slice(), " "), c.Bool("yes"))
				},
			},
			{
				Name:      "write",
				Usage:     "Generate a file from a description",
				ArgsUsage: "<path> <description>",
				Flags:     []cli.Flag{yesFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return fmt.Errorf("usage: lca write <path> <description>")
					}
					return cmdWrite(c.Context, cfg, c.Args().First(), strings.Join(c.Args().Tail(), " "), c.Bool("yes"))
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a file via an LLM-generated unified diff",
				ArgsUsage: "<path> <instruction>",
				Flags:     []cli.Flag{yesFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return fmt.Errorf("usage: lca edit <path> <instruction>")
					}
					return cmdEdit(c.Context, cfg, c.Args().First(), strings.Join(c.Args().Tail(), " "), c.Bool("yes"))
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a file or directory",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}},
					yesFlag(),
				},
				Action: func(c *cli.Context) error {
					return cmdDelete(cfg, c.Args().First(), c.Bool("recursive"), c.Bool("yes"))
				},
			},
			{
				Name:      "patch",
				Usage:     "Apply a unified diff from a file or stdin",
				ArgsUsage: "[diff-file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-backup", Usage: "Skip backing up originals"},
					yesFlag(),
				},
				Action: func(c *cli.Context) error {
					return cmdPatch(cfg, c.Args().First(), c.Bool("no-backup"), c.Bool("yes"))
				},
			},
			{
				Name:      "gen-patch",
				Usage:     "Generate and apply a patch from a description",
				ArgsUsage: "<description>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the diff without applying it"},
					yesFlag(),
				},
				Action: func(c *cli.Context) error {
					return cmdGenPatch(c.Context, cfg, strings.Join(c.Args().Slice(), " "), c.Bool("dry-run"), c.Bool("yes"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip confirmation prompts",
	}
}

// askConfirm gates a destructive operation: --yes answers for the user,
// otherwise the question is put to stdin and anything but y/yes
// declines.
func askConfirm(yes bool, question string) bool {
	if yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func toolContext(cfg *config.Config) tool.ToolContext {
	return tool.ToolContext{
		SessionID: "cli",
		Abort:     context.Background(),
		Mode:      "normal",
		WorkDir:   cfg.WorkDir,
		LogDir:    cfg.LogDir,
		StateFile: cfg.StateFile,
		BackupDir: cfg.BackupDir,
	}
}

// projectContext gathers background fed to the model alongside a
// request: the generated code map when one exists.
func projectContext(cfg *config.Config) string {
	data, err := os.ReadFile(filepath.Join(cfg.WorkDir, "CODEMAP.md"))
	if err != nil {
		return ""
	}
	return string(data)
}

func cmdWhoami(cfg *config.Config) error {
	mgr := state.NewManager(cfg.StateFile)
	st, err := mgr.Load()
	if err != nil {
		fmt.Println(noticeStyle.Render(err.Error()))
	}
	fmt.Println(renderPanel("lca "+version, whoamiBody(cfg, st)))
	return nil
}

func whoamiBody(cfg *config.Config, st *state.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "System:     %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(&b, "Model:      %s\n", cfg.Model)
	fmt.Fprintf(&b, "Workdir:    %s\n", cfg.WorkDir)
	fmt.Fprintf(&b, "State file: %s\n", cfg.StateFile)
	if cfg.BaseURL != "" {
		fmt.Fprintf(&b, "Base URL:   %s\n", cfg.BaseURL)
	}
	fmt.Fprintf(&b, "Todos:      %d pending, %d done\n", len(st.Pending()), len(st.Completed()))
	if st.LastAnalysis != nil {
		fmt.Fprintf(&b, "Analyzed:   %s\n", st.LastAnalysis.Format("2006-01-02 15:04"))
	} else {
		b.WriteString("Analyzed:   never\n")
	}
	b.WriteString("Commands:   whoami, analyze, ask, plan, todo, run, write, edit, delete, patch, gen-patch")
	return b.String()
}

func cmdAnalyze(ctx context.Context, cfg *config.Config, withMap bool) error {
	report, err := analyze.NewScanner().Scan(cfg.WorkDir)
	if err != nil {
		return err
	}

	langs := make([]string, 0, len(report.Languages))
	for l := range report.Languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	var b strings.Builder
	fmt.Fprintf(&b, "%d files, %d bytes, %d symbols\n\n", len(report.Files), report.TotalSize, len(report.Symbols))
	b.WriteString(renderLanguages(report.Languages, langs))
	fmt.Println(renderPanel("Project analysis", b.String()))

	mgr := state.NewManager(cfg.StateFile)
	st, loadErr := mgr.Load()
	if loadErr != nil {
		fmt.Println(noticeStyle.Render(loadErr.Error()))
	}
	st.RecordAnalysis(state.ProjectInfo{
		Path:      cfg.WorkDir,
		Files:     len(report.Files),
		TotalSize: report.TotalSize,
		Languages: report.Languages,
		Symbols:   len(report.Symbols),
	})
	if err := mgr.Save(); err != nil {
		return err
	}

	if !withMap {
		return nil
	}
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	path, err := analyze.WriteCodeMap(ctx, client, report)
	if err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}

func cmdAsk(ctx context.Context, cfg *config.Config, question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("usage: lca ask <question>")
	}
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	answer, err := client.Ask(ctx, question, projectContext(cfg))
	if err != nil {
		return err
	}
	fmt.Println(responseStyle.Render("⏺ ") + answer)
	return nil
}

func cmdPlan(ctx context.Context, cfg *config.Config, goal string) error {
	if strings.TrimSpace(goal) == "" {
		return fmt.Errorf("usage: lca plan <goal>")
	}
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	plan, err := client.CreatePlan(ctx, goal)
	if err != nil {
		return err
	}
	fmt.Println(renderPanel("Plan: "+goal, plan))

	report := cfg.ReportFile("plan")
	if err := os.WriteFile(report, []byte("# Plan: "+goal+"\n\n"+plan+"\n"), 0644); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	fmt.Println(dimStyle.Render("Saved to " + report))
	return nil
}

func cmdTodoAdd(cfg *config.Config, title, desc string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("usage: lca todo add <title>")
	}
	mgr := state.NewManager(cfg.StateFile)
	st, loadErr := mgr.Load()
	if loadErr != nil {
		fmt.Println(noticeStyle.Render(loadErr.Error()))
	}
	item := st.AddTodo(strings.TrimSpace(title), strings.TrimSpace(desc))
	if err := mgr.Save(); err != nil {
		return err
	}
	fmt.Printf("Added todo #%d: %s\n", item.ID, item.Title)
	return nil
}

func cmdTodoList(cfg *config.Config) error {
	mgr := state.NewManager(cfg.StateFile)
	st, loadErr := mgr.Load()
	if loadErr != nil {
		fmt.Println(noticeStyle.Render(loadErr.Error()))
	}
	fmt.Println(renderPanel("Todos", renderTodos(st.Pending(), st.Completed())))
	return nil
}

func cmdTodoDone(cfg *config.Config, arg string) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("usage: lca todo done <id>")
	}
	mgr := state.NewManager(cfg.StateFile)
	st, loadErr := mgr.Load()
	if loadErr != nil {
		fmt.Println(noticeStyle.Render(loadErr.Error()))
	}
	if !st.CompleteTodo(id) {
		return fmt.Errorf("no pending todo with id %d", id)
	}
	if err := mgr.Save(); err != nil {
		return err
	}
	fmt.Printf("Completed todo #%d\n", id)
	return nil
}

func cmdRun(ctx context.Context, cfg *config.Config, command string, yes bool) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("usage: lca run <command>")
	}
	if !askConfirm(yes, fmt.Sprintf("Run %q in %s?", command, cfg.WorkDir)) {
		fmt.Println(dimStyle.Render("Aborted"))
		return nil
	}
	registry := tool.NewToolRegistry()
	tctx := toolContext(cfg)
	tctx.Abort = ctx
	result, err := registry.Execute("bash", map[string]interface{}{"command": command}, tctx)
	if err != nil {
		return err
	}
	fmt.Println(result.Output)
	return result.Error
}

func cmdWrite(ctx context.Context, cfg *config.Config, path, description string, yes bool) error {
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	content, err := client.GenerateFileContent(ctx, description)
	if err != nil {
		return err
	}
	if !askConfirm(yes, fmt.Sprintf("Write %d bytes to %s?", len(content), path)) {
		fmt.Println(dimStyle.Render("Aborted"))
		return nil
	}
	registry := tool.NewToolRegistry()
	result, err := registry.Execute("write", map[string]interface{}{
		"file_path": path,
		"content":   content,
	}, toolContext(cfg))
	if err != nil {
		return err
	}
	fmt.Println(result.Output)
	return nil
}

func cmdEdit(ctx context.Context, cfg *config.Config, path, instruction string, yes bool) error {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(cfg.WorkDir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	diff, err := client.EditFile(ctx, string(data), instruction)
	if err != nil {
		return err
	}
	if strings.TrimSpace(diff) == "" {
		return fmt.Errorf("model produced no diff")
	}

	return applyDiff(cfg, diff, true, yes)
}

func cmdDelete(cfg *config.Config, path string, recursive, yes bool) error {
	if path == "" {
		return fmt.Errorf("usage: lca delete <path>")
	}
	if !askConfirm(yes, fmt.Sprintf("Delete %s?", path)) {
		fmt.Println(dimStyle.Render("Aborted"))
		return nil
	}
	registry := tool.NewToolRegistry()
	result, err := registry.Execute("delete", map[string]interface{}{
		"path":      path,
		"recursive": recursive,
	}, toolContext(cfg))
	if err != nil {
		return err
	}
	fmt.Println(result.Output)
	return nil
}

func cmdPatch(cfg *config.Config, diffFile string, noBackup, yes bool) error {
	var data []byte
	var err error
	if diffFile == "" || diffFile == "-" {
		// When the diff arrives on stdin there is nothing left to
		// answer the prompt with; pass --yes to apply non-interactively.
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(diffFile)
	}
	if err != nil {
		return fmt.Errorf("reading diff: %w", err)
	}
	return applyDiff(cfg, string(data), !noBackup, yes)
}

func cmdGenPatch(ctx context.Context, cfg *config.Config, description string, dryRun, yes bool) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("usage: lca gen-patch <description>")
	}
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	diff, err := client.GeneratePatch(ctx, description, projectContext(cfg))
	if err != nil {
		return err
	}
	if strings.TrimSpace(diff) == "" {
		return fmt.Errorf("model produced no diff")
	}
	if dryRun {
		fmt.Println(diff)
		return nil
	}
	return applyDiff(cfg, diff, true, yes)
}

// applyDiff runs the patch engine over the working directory and prints
// the per-file outcome. The engine's confirm hook shows the target
// files before anything is written.
func applyDiff(cfg *config.Config, diff string, backup, yes bool) error {
	files := patch.NewOSFiles(cfg.WorkDir)
	engine := patch.NewEngine(files, files, patch.Options{
		Backup:    backup,
		BackupDir: cfg.BackupDir,
		Confirm: func(paths []string) bool {
			return askConfirm(yes, fmt.Sprintf("Apply patch to %d file(s): %s?", len(paths), strings.Join(paths, ", ")))
		},
	})
	outcome, err := engine.ApplyPatchSet(diff)
	if errors.Is(err, patch.ErrDeclined) {
		fmt.Println(dimStyle.Render("Aborted"))
		return nil
	}
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(outcome.PerFile))
	for p := range outcome.PerFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		res := outcome.PerFile[path]
		switch res.Status {
		case patch.StatusApplied:
			fmt.Println(responseStyle.Render("applied  ") + path)
		case patch.StatusConflict:
			fmt.Println(errorStyle.Render("conflict ") + path + ": " + res.Reason)
		default:
			fmt.Println(noticeStyle.Render("skipped  ") + path + ": " + res.Reason)
		}
	}
	fmt.Println(dimStyle.Render(outcome.Summary()))

	if outcome.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to patch", outcome.Failed)
	}
	return nil
}
