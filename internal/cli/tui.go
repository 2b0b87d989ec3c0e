package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// pickerKeys are the key bindings of the type picker.
var pickerKeys = struct {
	Up, Down, Select, Quit key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =============================================================================
// TypePickerModel - Interactive room type selection
// =============================================================================

// TypePickerModel is the bubbletea model for choosing a node's room type.
type TypePickerModel struct {
	Types    []*roomtype.Type
	Current  string // name of the node's current type, marked in the list
	Cursor   int
	Selected *roomtype.Type
	Height   int
	Offset   int
}

// NewTypePickerModel creates a picker over types with the cursor on the
// current type when it is listed.
func NewTypePickerModel(types []*roomtype.Type, current string) TypePickerModel {
	m := TypePickerModel{
		Types:   types,
		Current: current,
		Height:  10,
	}
	for i, t := range types {
		if t.Name == current {
			m.Cursor = i
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m TypePickerModel) Init() tea.Cmd {
	return nil
}

func (m TypePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, pickerKeys.Up):
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case key.Matches(msg, pickerKeys.Down):
			if m.Cursor < len(m.Types)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case key.Matches(msg, pickerKeys.Select):
			if len(m.Types) == 0 {
				return m, nil
			}
			m.Selected = m.Types[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m TypePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Room Type"))
	b.WriteString("\n")
	help := []string{}
	for _, k := range []key.Binding{pickerKeys.Up, pickerKeys.Down, pickerKeys.Select, pickerKeys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(listDimStyle.Render(strings.Join(help, "  ")))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Types))
	for i := m.Offset; i < end; i++ {
		t := m.Types[i]
		cursor, style := "  ", listNormalStyle
		if i == m.Cursor {
			cursor, style = "▸ ", listSelectedStyle
		}
		line := cursor + style.Render(t.Name)
		if kind := typeKind(t); kind != "" {
			line += " " + listDimStyle.Render(kind)
		}
		if t.Name == m.Current {
			line += " " + StyleSuccess.Render("(current)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Types))))
	return b.String()
}

// pickType runs the picker and returns the chosen type, or nil when the
// user quit without choosing.
func pickType(types []*roomtype.Type, current string) (*roomtype.Type, error) {
	final, err := tea.NewProgram(NewTypePickerModel(types, current)).Run()
	if err != nil {
		return nil, err
	}
	return final.(TypePickerModel).Selected, nil
}

// =============================================================================
// Type Table
// =============================================================================

// typeKind names the structural role of t.
func typeKind(t *roomtype.Type) string {
	switch {
	case t.IsNone:
		return "none"
	case t.IsEntrance:
		return "entrance"
	case t.IsBossRoom:
		return "boss"
	case t.IsCorridor:
		return "corridor"
	default:
		return "room"
	}
}

// styleForType colors a type name by its role.
func styleForType(t *roomtype.Type) lipgloss.Style {
	switch {
	case t.IsNone:
		return styleNone
	case t.IsEntrance:
		return styleEntrance
	case t.IsBossRoom:
		return styleBoss
	case t.IsCorridor:
		return styleCorridor
	default:
		return StyleValue
	}
}

// renderTypeTable renders the catalog as a bordered table.
func renderTypeTable(types []*roomtype.Type) string {
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		displayable := ""
		if t.Displayable {
			displayable = "✓"
		}
		rows = append(rows, []string{t.Name, typeKind(t), displayable})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Kind", "Selectable").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 && row < len(types) {
				return styleForType(types[row])
			}
			return listDimStyle
		})
	return t.Render()
}
