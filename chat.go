package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lca/config"
	"lca/llm"
	"lca/state"
	"lca/tool"
)

var availableCommands = []string{"/model", "/todos", "/quit"}

type message struct {
	role         string
	content      string
	toolUseID    string
	toolName     string
	isToolUse    bool
	isToolResult bool
	toolUseBlock *anthropic.ContentBlockUnion
	err          error
}

type modelOption struct {
	name        string
	description string
	apiModel    anthropic.Model
}

var modelOptions = []modelOption{
	{
		name:        "Default (Sonnet 4.5)",
		description: "Smartest model for daily use",
		apiModel:    anthropic.Model("claude-sonnet-4-5-20250929"),
	},
	{
		name:        "Opus 4.1",
		description: "For complex tasks · Reaches usage limits faster",
		apiModel:    anthropic.Model("claude-opus-4-1-20250805"),
	},
	{
		name:        "Haiku 4.5",
		description: "Fast and lightweight · Most cost-effective",
		apiModel:    anthropic.Model("claude-haiku-4-5-20251001"),
	},
}

type mode string

const (
	normalMode mode = "normal"
	planMode   mode = "plan"
	bypassMode mode = "bypass"
)

var modes = []mode{normalMode, planMode, bypassMode}

type responseMsg string
type errMsg error

type chatModel struct {
	cfg      *config.Config
	messages []message
	input    string
	client   anthropic.Client
	waiting  bool
	err      error
	width    int
	height   int

	showAutocomplete      bool
	autocompleteOptions   []string
	autocompleteSelection int

	showModelMenu      bool
	modelMenuSelection int

	currentModel anthropic.Model
	currentMode  mode
	toolRegistry *tool.ToolRegistry
}

func initialChatModel(cfg *config.Config) chatModel {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return chatModel{
		cfg:          cfg,
		client:       anthropic.NewClient(opts...),
		currentModel: anthropic.Model(cfg.Model),
		currentMode:  normalMode,
		toolRegistry: tool.NewToolRegistry(),
	}
}

// toolContext builds the execution environment handed to tools.
func (m chatModel) toolContext() tool.ToolContext {
	return tool.ToolContext{
		SessionID: "chat",
		Abort:     context.Background(),
		Mode:      string(m.currentMode),
		WorkDir:   m.cfg.WorkDir,
		LogDir:    m.cfg.LogDir,
		StateFile: m.cfg.StateFile,
		BackupDir: m.cfg.BackupDir,
	}
}

func filterCommands(input string) []string {
	if !strings.HasPrefix(input, "/") {
		return nil
	}
	var matches []string
	for _, cmd := range availableCommands {
		if strings.HasPrefix(cmd, input) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

func (m *chatModel) updateAutocomplete() {
	m.autocompleteOptions = filterCommands(m.input)
	m.showAutocomplete = len(m.autocompleteOptions) > 0
	if m.autocompleteSelection >= len(m.autocompleteOptions) {
		m.autocompleteSelection = 0
	}
}

func (m chatModel) Init() tea.Cmd {
	return nil
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.waiting {
			return m, nil
		}

		// Alt+Enter inserts a newline; terminals cannot reliably
		// report Shift+Enter.
		if msg.Type == tea.KeyEnter && msg.Alt {
			m.input += "\n"
			return m, nil
		}

		if m.showModelMenu {
			return m.updateModelMenu(msg)
		}

		switch msg.Type {
		case tea.KeyEsc:
			if m.showAutocomplete {
				m.showAutocomplete = false
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			if m.showAutocomplete && len(m.autocompleteOptions) > 0 {
				m.input = m.autocompleteOptions[m.autocompleteSelection]
				m.showAutocomplete = false
				m.autocompleteSelection = 0
				return m, nil
			}
			if strings.TrimSpace(m.input) == "" {
				return m, nil
			}
			if strings.HasPrefix(m.input, "/") {
				return m.runSlashCommand(m.input)
			}

			m.messages = append(m.messages, message{role: "user", content: m.input})
			input := m.input
			m.input = ""
			m.waiting = true
			history := m.messages
			return m, func() tea.Msg {
				return sendWithTools(m.client, m.currentModel, history[:len(history)-1], input, m.toolRegistry)
			}

		case tea.KeyTab:
			if m.showAutocomplete && len(m.autocompleteOptions) > 0 {
				m.input = m.autocompleteOptions[m.autocompleteSelection]
				m.showAutocomplete = false
				m.autocompleteSelection = 0
			}

		case tea.KeyShiftTab:
			for i, md := range modes {
				if md == m.currentMode {
					m.currentMode = modes[(i+1)%len(modes)]
					break
				}
			}

		case tea.KeyUp:
			if m.showAutocomplete && len(m.autocompleteOptions) > 0 {
				m.autocompleteSelection--
				if m.autocompleteSelection < 0 {
					m.autocompleteSelection = len(m.autocompleteOptions) - 1
				}
			}

		case tea.KeyDown:
			if m.showAutocomplete && len(m.autocompleteOptions) > 0 {
				m.autocompleteSelection++
				if m.autocompleteSelection >= len(m.autocompleteOptions) {
					m.autocompleteSelection = 0
				}
			}

		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
				m.updateAutocomplete()
			}

		case tea.KeySpace:
			m.input += " "
			m.showAutocomplete = false

		case tea.KeyRunes:
			m.input += string(msg.Runes)
			m.updateAutocomplete()
		}

	case responseMsg:
		m.waiting = false
		m.messages = append(m.messages, message{role: "assistant", content: string(msg)})

	case toolUseMsg:
		m.waiting = false
		m.messages = append(m.messages, message{
			role:         "assistant",
			content:      fmt.Sprintf("Using tool: %s", msg.toolName),
			isToolUse:    true,
			toolName:     msg.toolName,
			toolUseID:    msg.toolID,
			toolUseBlock: &msg.toolUseBlock,
		})
		registry := m.toolRegistry
		toolCtx := m.toolContext()
		return m, func() tea.Msg {
			result, err := registry.Execute(msg.toolName, msg.input, toolCtx)
			if err != nil {
				result.Error = err
			}
			return toolResultMsg{
				toolName: msg.toolName,
				toolID:   msg.toolID,
				result:   result,
			}
		}

	case toolResultMsg:
		m.waiting = true
		resultContent := msg.result.Output
		if msg.result.Error != nil {
			resultContent = msg.result.Error.Error()
			if msg.result.Output != "" {
				resultContent += "\n" + msg.result.Output
			}
		}
		if resultContent == "" {
			resultContent = "(empty output)"
		}
		m.messages = append(m.messages, message{
			role:         "tool_result",
			content:      resultContent,
			isToolResult: true,
			toolName:     msg.toolName,
			toolUseID:    msg.toolID,
			err:          msg.result.Error,
		})
		history := m.messages
		return m, func() tea.Msg {
			return continueWithToolResult(m.client, m.currentModel, history, m.toolRegistry)
		}

	case errMsg:
		m.waiting = false
		m.err = msg

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m chatModel) updateModelMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showModelMenu = false

	case tea.KeyEnter:
		selected := modelOptions[m.modelMenuSelection]
		m.currentModel = selected.apiModel
		m.showModelMenu = false
		m.messages = append(m.messages, message{
			role:    "system",
			content: fmt.Sprintf("Set model to %s", selected.name),
		})

	case tea.KeyUp:
		m.modelMenuSelection--
		if m.modelMenuSelection < 0 {
			m.modelMenuSelection = len(modelOptions) - 1
		}

	case tea.KeyDown:
		m.modelMenuSelection++
		if m.modelMenuSelection >= len(modelOptions) {
			m.modelMenuSelection = 0
		}
	}
	return m, nil
}

func (m chatModel) runSlashCommand(input string) (tea.Model, tea.Cmd) {
	m.input = ""
	m.showAutocomplete = false

	switch input {
	case "/model":
		m.showModelMenu = true
	case "/todos":
		mgr := state.NewManager(m.cfg.StateFile)
		st, _ := mgr.Load()
		m.messages = append(m.messages, message{
			role:    "system",
			content: renderTodos(st.Pending(), st.Completed()),
		})
	case "/quit":
		return m, tea.Quit
	default:
		m.messages = append(m.messages, message{role: "system", content: "Unknown command: " + input})
	}
	return m, nil
}

func modelName(apiModel anthropic.Model) string {
	for _, opt := range modelOptions {
		if opt.apiModel == apiModel {
			return opt.name
		}
	}
	return string(apiModel)
}

func (m chatModel) View() string {
	var s strings.Builder

	if len(m.messages) == 0 && !m.showModelMenu {
		s.WriteString(titleStyle.Render("lca") + "  " + lipgloss.NewStyle().Bold(true).Render("Local Coding Agent") + "\n")
		s.WriteString(dimStyle.Render(modelName(m.currentModel)) + "\n")
		s.WriteString(dimStyle.Render(m.cfg.WorkDir) + "\n\n")
	}

	if m.showModelMenu {
		s.WriteString(lipgloss.NewStyle().Bold(true).Render("Switch between models") + "\n\n")
		for i, opt := range modelOptions {
			prefix := "   "
			if i == m.modelMenuSelection {
				prefix = " ❯ "
			}
			checkmark := ""
			if opt.apiModel == m.currentModel {
				checkmark = " ✔"
			}
			line := fmt.Sprintf("%s%d. %-25s %s%s", prefix, i+1, opt.name, opt.description, checkmark)
			if i == m.modelMenuSelection {
				s.WriteString(autocompleteSelectedStyle.Render(line) + "\n")
			} else {
				s.WriteString(line + "\n")
			}
		}
		return s.String()
	}

	for _, msg := range m.messages {
		switch {
		case msg.role == "user":
			s.WriteString(promptStyle.Render("> ") + msg.content + "\n\n")
		case msg.role == "system":
			s.WriteString(noticeStyle.Render(msg.content) + "\n\n")
		case msg.isToolUse:
			s.WriteString(toolStyle.Render("⚒ ") + msg.content + "\n\n")
		case msg.isToolResult:
			s.WriteString(dimStyle.Render("  └─ "+msg.content) + "\n\n")
		default:
			s.WriteString(responseStyle.Render("⏺ ") + msg.content + "\n\n")
		}
	}

	if m.waiting {
		s.WriteString(responseStyle.Render("⏺ Thinking...") + "\n\n")
	}
	if m.err != nil {
		s.WriteString(renderError(m.err) + "\n\n")
	}

	borderLine := strings.Repeat("─", m.width)
	s.WriteString(borderLine + "\n")
	for i, line := range strings.Split(m.input, "\n") {
		if i == 0 {
			s.WriteString("> " + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString(borderLine + "\n")

	statusText := ""
	switch m.currentMode {
	case planMode:
		statusText = "plan mode"
	case bypassMode:
		statusText = "bypass permissions"
	default:
		if m.showAutocomplete && len(m.autocompleteOptions) > 0 {
			statusText = m.autocompleteOptions[m.autocompleteSelection]
		}
	}
	s.WriteString(statusStyle.Render("  "+statusText) + "\n")
	s.WriteString(statusStyle.Render("  (shift+tab to cycle modes)") + "\n")

	return s.String()
}

// runChat launches the interactive TUI session.
func runChat(cfg *config.Config) error {
	if cfg.APIKey == "" {
		return llm.ErrNoAPIKey
	}
	p := tea.NewProgram(initialChatModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
