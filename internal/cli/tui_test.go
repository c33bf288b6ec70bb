package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/capmap/pkg/hierarchy"
	"github.com/matzehuels/capmap/pkg/layout"
)

func sampleResult(t *testing.T) *layout.Result {
	t.Helper()
	h, err := hierarchy.FromEntries([]hierarchy.Entry{
		{ID: "A", Children: []string{"B", "C"}},
		{ID: "B", Children: []string{"D"}},
		{ID: "C"},
		{ID: "D"},
	})
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	res, err := layout.NewEngine(layout.DefaultConfig()).Compute(context.Background(), h)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return res
}

func press(t *testing.T, m NodeListModel, key string) NodeListModel {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(NodeListModel)
}

func TestNodeListOrder(t *testing.T) {
	m := NewNodeListModel(sampleResult(t))

	var got []string
	for _, n := range m.Nodes {
		got = append(got, n.Value)
	}
	if want := "A B D C"; strings.Join(got, " ") != want {
		t.Errorf("order = %v, want %s", got, want)
	}
}

func TestNodeListNavigation(t *testing.T) {
	m := NewNodeListModel(sampleResult(t))

	steps := []struct {
		key  string
		want string
	}{
		{"j", "B"},
		{"down", "D"},
		{"p", "B"},
		{"G", "C"},
		{"j", "C"},
		{"g", "A"},
		{"up", "A"},
		{"p", "A"},
	}
	for _, s := range steps {
		m = press(t, m, s.key)
		if got := m.current().Value; got != s.want {
			t.Fatalf("after %q: cursor on %s, want %s", s.key, got, s.want)
		}
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestNodeListWindowSize(t *testing.T) {
	m := NewNodeListModel(sampleResult(t))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(NodeListModel).Height; got != 5 {
		t.Errorf("Height = %d, want 5", got)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := next.(NodeListModel).Height; got != 26 {
		t.Errorf("Height = %d, want 26", got)
	}
}

func TestNodeListView(t *testing.T) {
	m := NewNodeListModel(sampleResult(t))
	m = press(t, m, "j")

	view := m.View()
	for _, want := range []string{"Layout Nodes", "[2/4]", "parent", "children", "D"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNodeTree(t *testing.T) {
	res := sampleResult(t)
	out := nodeTree(res.Root).String()
	for _, name := range []string{"A", "B", "C", "D"} {
		if !strings.Contains(out, name) {
			t.Errorf("tree missing %s:\n%s", name, out)
		}
	}
	if nodeNames(nil) != "—" {
		t.Errorf("nodeNames(nil) = %q", nodeNames(nil))
	}
}
