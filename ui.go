package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lca/state"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	responseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	autocompleteSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("0")).
					Background(lipgloss.Color("12"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// renderPanel draws a bordered box with a bold title line, standing in
// for the original console panels.
func renderPanel(title, body string) string {
	content := titleStyle.Render(title)
	if body != "" {
		content += "\n" + body
	}
	return panelStyle.Render(content)
}

func renderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("error: %v", err))
}

// renderTodos formats the task list, pending first.
func renderTodos(pending, completed []state.TodoItem) string {
	if len(pending) == 0 && len(completed) == 0 {
		return dimStyle.Render("No todos yet")
	}
	var b strings.Builder
	for _, t := range pending {
		fmt.Fprintf(&b, "[ ] #%d %s\n", t.ID, t.Title)
		if t.Description != "" {
			b.WriteString(dimStyle.Render("        "+t.Description) + "\n")
		}
	}
	for _, t := range completed {
		b.WriteString(dimStyle.Render(fmt.Sprintf("[x] #%d %s", t.ID, t.Title)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderLanguages formats language file counts as aligned rows.
func renderLanguages(langs map[string]int, order []string) string {
	var b strings.Builder
	for _, name := range order {
		fmt.Fprintf(&b, "%-12s %d\n", name, langs[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
