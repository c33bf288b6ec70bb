package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/capmap/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeListModel - Interactive node descriptor browser
// =============================================================================

// NodeListModel is the bubbletea model behind 'inspect'. It lists every
// node in depth-first order and shows the full descriptor of the one under
// the cursor.
type NodeListModel struct {
	Nodes  []*layout.Node
	Cursor int
	Height int
	Offset int
}

// NewNodeListModel creates a node list for res.
func NewNodeListModel(res *layout.Result) NodeListModel {
	return NodeListModel{
		Nodes:  preorder(res.Root),
		Height: 15,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Nodes))
		case "end", "G":
			m.move(len(m.Nodes))
		case "p":
			// Jump to the parent.
			if n := m.current(); n != nil && n.Parent != nil {
				m.moveTo(n.Parent)
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, the table borders and the detail panel.
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and scrolls.
func (m *NodeListModel) move(delta int) {
	if len(m.Nodes) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Nodes)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *NodeListModel) moveTo(n *layout.Node) {
	for i, c := range m.Nodes {
		if c == n {
			m.move(i - m.Cursor)
			return
		}
	}
}

func (m NodeListModel) current() *layout.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[m.Cursor]
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  p parent  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strings.Repeat("  ", n.Level) + n.Value,
			fmt.Sprintf("%d", n.Level),
			fmt.Sprintf("%d", n.Rank),
			fmt.Sprintf("%.3f × %.3f", n.Width, n.Height),
			fmt.Sprintf("(%.3f, %.3f)", n.X, n.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Level", "Rank", "Size", "Center").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Nodes[idx].IsLeaf():
				return listNormalStyle
			default:
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if n := m.current(); n != nil {
		b.WriteString(describeNode(n))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}

// describeNode renders the relations of n.
func describeNode(n *layout.Node) string {
	parent := "—"
	if n.Parent != nil {
		parent = n.Parent.Value
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("parent  "), listNormalStyle.Render(parent))
	fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("siblings"), listNormalStyle.Render(nodeNames(n.Siblings)))
	fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("children"), listNormalStyle.Render(nodeNames(n.Children)))
	fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("edges   "),
		listNormalStyle.Render(fmt.Sprintf("left %.3f  right %.3f  bottom %.3f  top %.3f", n.Left(), n.Right(), n.Bottom(), n.Top())))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// nodeTree renders the hierarchy below root as a static tree.
func nodeTree(root *layout.Node) *tree.Tree {
	t := tree.Root(nodeLabel(root)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(listDimStyle).
		RootStyle(StyleTitle)
	for _, c := range root.Children {
		if c.IsLeaf() {
			t.Child(nodeLabel(c))
			continue
		}
		t.Child(nodeTree(c))
	}
	return t
}

func nodeLabel(n *layout.Node) string {
	return fmt.Sprintf("%s %s", n.Value,
		StyleDim.Render(fmt.Sprintf("%.3f×%.3f @ (%.3f, %.3f)", n.Width, n.Height, n.X, n.Y)))
}

// preorder lists the nodes below root depth first, children in rank order.
func preorder(root *layout.Node) []*layout.Node {
	if root == nil {
		return nil
	}
	out := []*layout.Node{root}
	for _, c := range root.Children {
		out = append(out, preorder(c)...)
	}
	return out
}

func nodeNames(nodes []*layout.Node) string {
	if len(nodes) == 0 {
		return "—"
	}
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Value
	}
	return strings.Join(names, ", ")
}
