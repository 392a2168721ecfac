package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/devflow/pkg/resolver"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// VersionPickerModel - Interactive compatible version selection
// =============================================================================

// VersionPickerModel is the bubbletea model for picking one compatible version.
type VersionPickerModel struct {
	PackageID string
	Target    string
	Versions  []resolver.VersionDetail
	Cursor    int
	Selected  *resolver.VersionDetail
	Height    int
	Offset    int
}

// NewVersionPickerModel creates a picker over versions, which are expected
// newest first.
func NewVersionPickerModel(packageID, target string, versions []resolver.VersionDetail) VersionPickerModel {
	return VersionPickerModel{
		PackageID: packageID,
		Target:    target,
		Versions:  versions,
		Height:    15,
	}
}

func (m VersionPickerModel) Init() tea.Cmd {
	return nil
}

func (m VersionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "enter":
			if len(m.Versions) == 0 {
				return m, tea.Quit
			}
			v := m.Versions[m.Cursor]
			m.Selected = &v
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m VersionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s on %s", m.PackageID, m.Target)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Versions))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		v := m.Versions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			v.Version,
			formatDate(v.Published),
			formatCount(v.Downloads),
			strings.Join(v.SupportedFrameworks, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Version", "Published", "Downloads", "Frameworks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Versions))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("Jan 2, 2006")
}

// formatCount abbreviates large download counts ("1.2M", "34k").
func formatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%dk", n/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
