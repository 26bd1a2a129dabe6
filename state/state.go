// Package state persists agent session data (TODO items, last project
// analysis) as a JSON file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TodoItem is one tracked task.
type TodoItem struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Completed   bool       `json:"completed"`
}

// ProjectInfo is the summary recorded by the analyze command.
type ProjectInfo struct {
	Path      string         `json:"path"`
	Files     int            `json:"files"`
	TotalSize int64          `json:"total_size"`
	Languages map[string]int `json:"languages"`
	Symbols   int            `json:"symbols"`
}

// State is the full persisted agent state.
type State struct {
	Todos        []TodoItem   `json:"todos"`
	LastAnalysis *time.Time   `json:"last_analysis,omitempty"`
	ProjectInfo  *ProjectInfo `json:"project_info,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func newState() *State {
	now := time.Now()
	return &State{CreatedAt: now, UpdatedAt: now}
}

// AddTodo appends a new pending item and returns it. IDs are assigned
// monotonically from the current maximum.
func (s *State) AddTodo(title, description string) TodoItem {
	maxID := 0
	for _, t := range s.Todos {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	item := TodoItem{
		ID:          maxID + 1,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.Todos = append(s.Todos, item)
	s.UpdatedAt = time.Now()
	return item
}

// CompleteTodo marks the item with the given ID done. It reports false
// when the ID is unknown or the item is already completed.
func (s *State) CompleteTodo(id int) bool {
	for i := range s.Todos {
		if s.Todos[i].ID != id || s.Todos[i].Completed {
			continue
		}
		now := time.Now()
		s.Todos[i].Completed = true
		s.Todos[i].CompletedAt = &now
		s.UpdatedAt = now
		return true
	}
	return false
}

// Pending returns incomplete items in insertion order.
func (s *State) Pending() []TodoItem {
	var out []TodoItem
	for _, t := range s.Todos {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Completed returns finished items in insertion order.
func (s *State) Completed() []TodoItem {
	var out []TodoItem
	for _, t := range s.Todos {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// RecordAnalysis stores the latest project scan summary.
func (s *State) RecordAnalysis(info ProjectInfo) {
	now := time.Now()
	s.ProjectInfo = &info
	s.LastAnalysis = &now
	s.UpdatedAt = now
}

// Manager loads and saves state at a fixed path.
type Manager struct {
	path  string
	state *State
}

// NewManager builds a manager for the given state file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the state file, caching the result. The returned state is
// never nil: a missing file yields a fresh state, and an unreadable or
// corrupt file is replaced by a fresh state along with a non-fatal
// error so callers can warn.
func (m *Manager) Load() (*State, error) {
	if m.state != nil {
		return m.state, nil
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.state = newState()
		return m.state, nil
	}
	if err != nil {
		m.state = newState()
		return m.state, fmt.Errorf("state file %s is unreadable, starting fresh: %w", m.path, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		m.state = newState()
		return m.state, fmt.Errorf("state file %s is corrupt, starting fresh: %w", m.path, err)
	}
	m.state = &s
	return m.state, nil
}

// Save writes the cached state back to disk, creating the parent
// directory as needed.
func (m *Manager) Save() error {
	if m.state == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}
