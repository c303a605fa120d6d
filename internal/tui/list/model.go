package list

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/virtuallist/internal/viewport"
	"github.com/rshade/virtuallist/internal/virtual"
)

const (
	// statusLines is the number of rows reserved below the list on window resize.
	statusLines = 1

	// wheelStep is the number of rows one mouse wheel notch scrolls.
	wheelStep = 3

	// settleRounds bounds the measure/relayout iterations after one input.
	settleRounds = 4
)

// RenderFunc renders an item. The selected parameter indicates whether this item is currently
// selected. The result may contain newlines.
type RenderFunc[T any] func(item T, selected bool) string

// KeyFunc returns the unique identity of an item.
type KeyFunc[T any] func(item T) string

// Option configures a VirtualListModel.
type Option[T any] func(*VirtualListModel[T])

// WithLoadMore registers fn to be called when the bottom of the list is reached. The returned
// items are appended.
func WithLoadMore[T any](fn func() []T) Option[T] {
	return func(m *VirtualListModel[T]) {
		m.loadMore = fn
	}
}

// WithKeyMap replaces the default keybindings.
func WithKeyMap[T any](keys KeyMap) Option[T] {
	return func(m *VirtualListModel[T]) {
		m.keys = keys
	}
}

// WithLogger sets the logger handed to the scroll controller.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(m *VirtualListModel[T]) {
		m.logger = &logger
	}
}

// VirtualListModel is a scrolling list that only renders the materialized range.
// Sizes are terminal rows: every rendered item is measured and reported back, unrendered
// items are estimated from the measured ones.
type VirtualListModel[T any] struct {
	ctrl *viewport.Controller[T, string]

	keyFunc    KeyFunc[T]
	renderFunc RenderFunc[T]
	loadMore   func() []T
	logger     *zerolog.Logger

	keys        KeyMap
	help        help.Model
	style       lipgloss.Style
	statusStyle lipgloss.Style
	printer     *message.Printer

	// selected is the currently selected item index (0-based)
	selected int

	// height is the number of list rows, width the number of columns (0 disables wrapping)
	height int
	width  int

	// dirty is set when the range changed and the new items have not been measured yet.
	dirty    bool
	atBottom bool
}

// NewVirtualListModel creates a list showing height rows of items.
func NewVirtualListModel[T any](
	items []T,
	height, width int,
	keyFunc KeyFunc[T],
	renderFunc RenderFunc[T],
	opts ...Option[T],
) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		keyFunc:     keyFunc,
		renderFunc:  renderFunc,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		style:       lipgloss.NewStyle(),
		statusStyle: lipgloss.NewStyle().Faint(true),
		printer:     message.NewPrinter(language.English),
		height:      max(height, 1),
		width:       max(width, 0),
		dirty:       true,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.ctrl = viewport.New(viewport.Options{
		Keeps:        m.height,
		EstimateSize: 1,
		ClientSize:   float64(m.height),
		Logger:       m.logger,
	}, viewport.KeyFunc[T, string](keyFunc), items, m.onEvent)

	m.settle()
	return m
}

// Init initializes the model (required for tea.Model interface).
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles keyboard, mouse wheel and resize messages.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case tea.MouseMsg:
		m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-statusLines, 1)
		m.help.Width = msg.Width
		m.ctrl.SetClientSize(float64(m.height))
		m.ctrl.SetKeeps(m.height)
		// A new width changes how items wrap.
		m.dirty = true
		m.settle()
		m.ensureVisible()
	}

	return m, nil
}

func (m *VirtualListModel[T]) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	n := m.ItemCount()
	if n == 0 {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.SetSelected(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		m.SetSelected(m.selected + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.SetSelected(m.selected - m.height)
	case key.Matches(msg, m.keys.PageDown):
		m.SetSelected(m.selected + m.height)
	case key.Matches(msg, m.keys.Home):
		m.selected = 0
		m.dirty = true
		m.ctrl.ScrollToOffset(0)
		m.settle()
	case key.Matches(msg, m.keys.End):
		m.selected = n - 1
		m.dirty = true
		m.ctrl.ScrollToBottom()
		m.settle()
		m.ensureVisible()
	}
	return nil
}

func (m *VirtualListModel[T]) handleMouseMsg(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}

	limit := max(m.ctrl.ScrollSize()-m.ctrl.ClientSize(), 0)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.Scroll(max(m.ctrl.Offset()-wheelStep, 0))
	case tea.MouseButtonWheelDown:
		m.ctrl.Scroll(min(m.ctrl.Offset()+wheelStep, limit))
	default:
		return
	}
	m.settle()
}

func (m *VirtualListModel[T]) onEvent(ev viewport.Event[string]) {
	switch ev.Type {
	case viewport.EventRangeChanged:
		m.dirty = true
	case viewport.EventToBottom:
		m.atBottom = true
	}
}

// settle measures newly materialized items until the range stops moving, then loads more items
// if the bottom was reached.
func (m *VirtualListModel[T]) settle() {
	for range settleRounds {
		if !m.dirty {
			break
		}
		m.dirty = false
		m.measure()
	}

	reached := m.atBottom
	m.atBottom = false
	if reached && m.loadMore != nil {
		if more := m.loadMore(); len(more) > 0 {
			m.SetItems(slices.Concat(m.ctrl.Items(), more))
		}
	}
}

// measure renders every materialized item and reports its height in rows.
func (m *VirtualListModel[T]) measure() {
	r := m.ctrl.Range()
	items := m.ctrl.Items()
	for i := r.Start; i <= r.End && i < len(items); i++ {
		m.ctrl.ItemResized(m.keyFunc(items[i]), float64(lipgloss.Height(m.renderItem(i))))
	}
}

// ensureVisible scrolls until the selected item is fully on screen, or starts at the top of the
// screen when it is taller than the list.
func (m *VirtualListModel[T]) ensureVisible() {
	items := m.ctrl.Items()
	if len(items) == 0 {
		return
	}

	for range settleRounds {
		top := m.ctrl.OffsetOf(m.selected)
		bottom := top + m.ctrl.SizeOf(m.keyFunc(items[m.selected]))
		offset, client := m.ctrl.Offset(), m.ctrl.ClientSize()

		switch {
		case top < offset:
			m.ctrl.ScrollToOffset(top)
		case bottom > offset+client && top > offset:
			m.ctrl.ScrollToOffset(min(top, bottom-client))
		default:
			return
		}
		m.settle()
	}
}

func (m *VirtualListModel[T]) renderItem(i int) string {
	s := m.renderFunc(m.ctrl.Items()[i], i == m.selected)
	if m.width > 0 {
		s = m.style.Width(m.width).Render(s)
	}
	return s
}

// View renders the rows of the materialized items that fall inside the list, followed by a
// status line.
func (m *VirtualListModel[T]) View() string {
	if m.ItemCount() == 0 {
		return ""
	}

	r := m.ctrl.Range()
	var lines []string
	for i := r.Start; i <= r.End; i++ {
		lines = append(lines, strings.Split(m.renderItem(i), "\n")...)
	}

	skip := int(math.Round(m.ctrl.Offset() - r.PadFront))
	skip = min(max(skip, 0), len(lines))
	end := min(skip+m.height, len(lines))

	var b strings.Builder
	b.WriteString(strings.Join(lines[skip:end], "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *VirtualListModel[T]) statusLine() string {
	r := m.ctrl.Range()
	status := m.printer.Sprintf("%d/%d  items %d-%d  rows %.0f/%.0f",
		m.selected+1, m.ItemCount(), r.Start+1, r.End+1, m.ctrl.Offset(), m.ctrl.ScrollSize())
	return m.statusStyle.Render(status + "  " + m.help.View(m.keys))
}

// SetItems replaces the items. The first rendered item stays in place when it is still present,
// and the selection follows its item by key.
func (m *VirtualListModel[T]) SetItems(items []T) {
	var selectedKey string
	hadSelection := m.ItemCount() > 0
	if hadSelection {
		selectedKey = m.keyFunc(m.ctrl.Items()[m.selected])
	}

	m.ctrl.SetDataSources(items)

	m.selected = min(m.selected, max(len(items)-1, 0))
	if hadSelection {
		if idx := slices.IndexFunc(items, func(it T) bool { return m.keyFunc(it) == selectedKey }); idx >= 0 {
			m.selected = idx
		}
	}
	m.dirty = true
	m.settle()
}

// Items returns all items.
func (m *VirtualListModel[T]) Items() []T {
	return m.ctrl.Items()
}

// ItemCount returns the total number of items in the list.
func (m *VirtualListModel[T]) ItemCount() int {
	return m.ctrl.Len()
}

// Selected returns the currently selected item index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected sets the selected item index, capping to valid bounds, and scrolls it into view.
func (m *VirtualListModel[T]) SetSelected(index int) {
	n := m.ItemCount()
	if n == 0 {
		m.selected = 0
		return
	}

	m.selected = min(max(index, 0), n-1)
	// The selected item renders differently, so it is measured again.
	m.dirty = true
	m.settle()
	m.ensureVisible()
}

// VisibleFrom returns the first rendered item index (inclusive).
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.ctrl.Range().Start
}

// VisibleTo returns the last rendered item index (exclusive).
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.ctrl.Range().End + 1
}

// Range returns the materialized range.
func (m *VirtualListModel[T]) Range() virtual.Range {
	return m.ctrl.Range()
}

// Offset returns the first row shown.
func (m *VirtualListModel[T]) Offset() float64 {
	return m.ctrl.Offset()
}

// SizeOf returns the measured or estimated height of the item with key.
func (m *VirtualListModel[T]) SizeOf(key string) float64 {
	return m.ctrl.SizeOf(key)
}

// SizeCount returns the number of measured items.
func (m *VirtualListModel[T]) SizeCount() int {
	return m.ctrl.SizeCount()
}

// Height returns the number of list rows.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// GetSelectedItem returns the currently selected item.
// Returns nil if list is empty.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	items := m.ctrl.Items()
	if len(items) == 0 || m.selected < 0 || m.selected >= len(items) {
		return nil
	}
	return &items[m.selected]
}

// Close releases the scroll engine.
func (m *VirtualListModel[T]) Close() {
	m.ctrl.Close()
}
