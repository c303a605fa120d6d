package list_test

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtuallist/internal/tui/list"
)

type entry struct {
	id   string
	text string
}

func entryKey(e entry) string { return e.id }

func renderEntry(e entry, selected bool) string {
	if selected {
		return "> " + e.text
	}
	return "  " + e.text
}

func makeEntries(prefix string, n int, text func(i int) string) []entry {
	out := make([]entry, n)
	for i := range out {
		out[i] = entry{id: fmt.Sprintf("%s-%d", prefix, i), text: text(i)}
	}
	return out
}

func singleLine(i int) string { return fmt.Sprintf("entry %d", i) }

func newModel(t *testing.T, items []entry, height, width int, opts ...list.Option[entry]) *list.VirtualListModel[entry] {
	t.Helper()
	m := list.NewVirtualListModel(items, height, width, entryKey, renderEntry, opts...)
	t.Cleanup(m.Close)
	return m
}

func bodyLines(view string) []string {
	lines := strings.Split(view, "\n")
	return lines[:len(lines)-1]
}

func press(m *list.VirtualListModel[entry], msg tea.KeyMsg, times int) {
	for range times {
		m.Update(msg)
	}
}

func TestVirtualListModel_NewModel(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)

	assert.Equal(t, 100, m.ItemCount())
	assert.Equal(t, 10, m.Height())
	assert.Equal(t, 0, m.Selected())
	assert.Equal(t, 0, m.VisibleFrom())
	assert.Equal(t, 10, m.VisibleTo())
	assert.Equal(t, 10, m.SizeCount(), "rendered items are measured")

	body := bodyLines(m.View())
	require.Len(t, body, 10)
	assert.Equal(t, "> entry 0", body[0])
	assert.Equal(t, "  entry 9", body[9])
}

func TestVirtualListModel_KeyboardNavigation(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)

	press(m, tea.KeyMsg{Type: tea.KeyDown}, 15)
	assert.Equal(t, 15, m.Selected())
	assert.Equal(t, 6.0, m.Offset(), "selection is kept at the bottom edge")
	assert.LessOrEqual(t, m.VisibleFrom(), 6)
	assert.Greater(t, m.VisibleTo(), 15)

	body := bodyLines(m.View())
	assert.Equal(t, "  entry 6", body[0])
	assert.Equal(t, "> entry 15", body[9])

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 10)
	assert.Equal(t, 5, m.Selected())
	assert.Equal(t, 5.0, m.Offset())

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 99, m.Selected())
	assert.Equal(t, 90.0, m.Offset())
	assert.Equal(t, 100, m.VisibleTo())
	body = bodyLines(m.View())
	assert.Equal(t, "> entry 99", body[len(body)-1])

	m.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.Selected())
	assert.Equal(t, 0.0, m.Offset())

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 10, m.Selected())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 9, m.Selected())
}

func TestVirtualListModel_ScrollBoundaries(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.Selected(), "up at start stays at 0")

	m.SetSelected(500)
	assert.Equal(t, 99, m.Selected())

	m.SetSelected(-3)
	assert.Equal(t, 0, m.Selected())
}

func TestVirtualListModel_MultiLineItems(t *testing.T) {
	items := makeEntries("e", 50, func(i int) string {
		return strings.TrimSuffix(strings.Repeat("line\n", i%3+1), "\n")
	})
	m := newModel(t, items, 10, 0)

	assert.Equal(t, 1.0, m.SizeOf("e-0"))
	assert.Equal(t, 2.0, m.SizeOf("e-1"))
	assert.Equal(t, 3.0, m.SizeOf("e-2"))
	assert.Len(t, bodyLines(m.View()), 10)

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 49, m.Selected())
	body := bodyLines(m.View())
	assert.Equal(t, []string{"> line", "line"}, body[len(body)-2:], "the last item ends on the last row")
}

func TestVirtualListModel_Wrapping(t *testing.T) {
	items := []entry{{id: "long", text: "aaaa bbbb cccc dddd eeee"}, {id: "short", text: "x"}}
	m := newModel(t, items, 10, 10)

	assert.Equal(t, 3.0, m.SizeOf("long"))
	assert.Equal(t, 1.0, m.SizeOf("short"))
}

func TestVirtualListModel_WindowResize(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 21})
	assert.Equal(t, 20, m.Height())
	assert.Equal(t, 80, m.Width())
	assert.GreaterOrEqual(t, m.Range().Len(), 20)
	assert.Len(t, bodyLines(m.View()), 20)
}

func TestVirtualListModel_MouseWheel(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 3.0, m.Offset())

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 0.0, m.Offset())

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 90.0, m.Offset(), "wheel stops at the bottom")
}

func TestVirtualListModel_Quit(t *testing.T) {
	m := newModel(t, makeEntries("e", 3, singleLine), 10, 0)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestVirtualListModel_LoadMore(t *testing.T) {
	calls := 0
	loadMore := func() []entry {
		calls++
		return makeEntries(fmt.Sprintf("more%d", calls), 10, singleLine)
	}
	m := newModel(t, makeEntries("e", 20, singleLine), 10, 0, list.WithLoadMore(loadMore))

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 30, m.ItemCount())
	assert.Equal(t, 19, m.Selected(), "selection stays on its item")
}

func TestVirtualListModel_SetItems(t *testing.T) {
	m := newModel(t, makeEntries("e", 100, singleLine), 10, 0)
	m.SetSelected(50)
	from := m.VisibleFrom()

	m.SetItems(append(makeEntries("new", 5, singleLine), m.Items()...))

	require.NotNil(t, m.GetSelectedItem())
	assert.Equal(t, "e-50", m.GetSelectedItem().id)
	assert.Equal(t, 55, m.Selected())
	assert.Equal(t, from+5, m.VisibleFrom())
}

func TestVirtualListModel_Empty(t *testing.T) {
	m := newModel(t, nil, 10, 0)

	assert.Equal(t, "", m.View())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.Selected())
	assert.Nil(t, m.GetSelectedItem())
}

func TestVirtualListModel_LargeDataset(t *testing.T) {
	m := newModel(t, makeEntries("e", 100_000, singleLine), 20, 0)

	view := m.View()
	assert.Len(t, bodyLines(view), 20)
	assert.Less(t, len(view), 5000, "only the materialized range is rendered")

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 99_999, m.Selected())
	assert.Less(t, m.SizeCount(), 200, "only rendered items are measured")
	body := bodyLines(m.View())
	assert.Equal(t, "> entry 99999", body[len(body)-1])
}
