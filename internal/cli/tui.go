package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SceneListModel - Interactive scene file selection
// =============================================================================

// sceneEntry is one candidate scene file with its parsed metadata.
// Files that fail to parse stay listed but cannot be selected, so a typo
// in one scene does not hide the rest of the directory.
type sceneEntry struct {
	Path     string
	Name     string
	Depth    int
	Rules    int
	ParseErr error
}

// SceneListModel is the bubbletea model for interactive scene selection.
type SceneListModel struct {
	Scenes   []sceneEntry
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewSceneListModel creates a new scene list model.
func NewSceneListModel(scenes []sceneEntry) SceneListModel {
	return SceneListModel{
		Scenes: scenes,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m SceneListModel) Init() tea.Cmd {
	return nil
}

func (m SceneListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Scenes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			entry := m.Scenes[m.Cursor]
			if entry.ParseErr != nil {
				return m, nil
			}
			m.Selected = entry.Path
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SceneListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Scene"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Scenes) {
		end = len(m.Scenes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Scenes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		name := s.Name
		if name == "" {
			name = "—"
		}
		depth := "—"
		if s.Depth > 0 {
			depth = fmt.Sprintf("%d", s.Depth)
		}
		rules := fmt.Sprintf("%d", s.Rules)
		status := "✓"
		if s.ParseErr != nil {
			name, depth, rules = "—", "—", "—"
			status = "✗"
		}

		rows = append(rows, []string{cursor, filepath.Base(s.Path), name, depth, rules, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "Scene", "Depth", "Rules", "Valid").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Scenes) {
				return lipgloss.NewStyle()
			}
			s := m.Scenes[actualIdx]
			isCurrent := actualIdx == m.Cursor

			if s.ParseErr != nil {
				if isCurrent {
					return lipgloss.NewStyle().Foreground(colorDim).Bold(true)
				}
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if isCurrent {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Scenes))))

	return b.String()
}

// =============================================================================
// Picker
// =============================================================================

// pickScene scans dir for TOML scene files and lets the user choose one
// interactively. It returns the selected path, or "" if the user quit.
func pickScene(dir string) (string, error) {
	scenes, err := scanScenes(dir)
	if err != nil {
		return "", err
	}
	if len(scenes) == 0 {
		return "", errors.New(errors.ErrCodeFileNotFound, "no .toml scene files in %s; pass a scene file explicitly", dir)
	}

	model := NewSceneListModel(scenes)
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("scene picker: %w", err)
	}
	return final.(SceneListModel).Selected, nil
}

// scanScenes lists the TOML files in dir with their parsed metadata,
// sorted by file name.
func scanScenes(dir string) ([]sceneEntry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	entries := make([]sceneEntry, 0, len(matches))
	for _, path := range matches {
		entry := sceneEntry{Path: path}
		data, err := os.ReadFile(path)
		if err != nil {
			entry.ParseErr = err
		} else if doc, err := scene.Parse(data); err != nil {
			entry.ParseErr = err
		} else {
			entry.Name = doc.Name
			entry.Depth = doc.Depth
			entry.Rules = len(doc.Rules)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
