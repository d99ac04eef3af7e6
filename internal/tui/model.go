// Package tui implements the interactive dataset browser.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// Filter narrows the browser to the records it matches.
type Filter struct {
	Match func(rec *model.TransactionRecord) bool
	Label string
}

// Filters lists the filters the browser cycles through: every record, one per archetype,
// then every abuse record.
func Filters() []Filter {
	filters := []Filter{{Label: "all", Match: func(*model.TransactionRecord) bool { return true }}}
	for _, abuse := range model.Archetypes {
		filters = append(filters, Filter{
			Label: string(abuse),
			Match: func(rec *model.TransactionRecord) bool { return rec.AbuseType == abuse },
		})
	}
	return append(filters, Filter{
		Label: "abuse",
		Match: func(rec *model.TransactionRecord) bool { return rec.IsAbuse },
	})
}

const (
	minTableHeight = 5
	chromeLines    = 4
	detailLines    = 14
)

// Model holds the browser state.
type Model struct {
	help       help.Model
	keymap     KeyMap
	source     string
	records    []model.TransactionRecord
	visible    []int
	filters    []Filter
	table      table.Model
	filter     int
	width      int
	height     int
	showDetail bool
	quitting   bool
}

// NewModel creates a browser over records. source names where they came from.
func NewModel(source string, records []model.TransactionRecord) Model {
	t := table.New(
		table.WithColumns(columns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	t.SetStyles(tableStyles())

	m := Model{
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		source:  source,
		records: records,
		filters: Filters(),
		table:   t,
		width:   defaultWidth,
		height:  30,
	}
	m.applyFilter()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.NextFilter):
			m.setFilter((m.filter + 1) % len(m.filters))
			return m, nil
		case key.Matches(msg, m.keymap.PrevFilter):
			m.setFilter((m.filter + len(m.filters) - 1) % len(m.filters))
			return m, nil
		case key.Matches(msg, m.keymap.ClearFilter):
			m.setFilter(0)
			return m, nil
		case key.Matches(msg, m.keymap.AbuseOnly):
			m.setFilter(len(m.filters) - 1)
			return m, nil
		case key.Matches(msg, m.keymap.ToggleDetail):
			m.showDetail = !m.showDetail
			m.resize()
			return m, nil
		case key.Matches(msg, m.keymap.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setFilter(i int) {
	if i == m.filter {
		return
	}
	m.filter = i
	m.applyFilter()
}

func (m *Model) applyFilter() {
	match := m.filters[m.filter].Match
	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.records))
	for i := range m.records {
		if match(&m.records[i]) {
			m.visible = append(m.visible, i)
			rows = append(rows, row(&m.records[i]))
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
	m.resize()
}

func (m *Model) resize() {
	h := m.height - chromeLines
	if m.showDetail {
		h -= detailLines
	}
	if m.help.ShowAll {
		h -= len(m.keymap.FullHelp()[0])
	}
	m.table.SetHeight(max(h, minTableHeight))
}

// Selected returns the record under the cursor.
func (m Model) Selected() (model.TransactionRecord, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return model.TransactionRecord{}, false
	}
	return m.records[m.visible[cursor]], true
}

// FilterLabel returns the label of the active filter.
func (m Model) FilterLabel() string {
	return m.filters[m.filter].Label
}

// VisibleCount returns how many records pass the active filter.
func (m Model) VisibleCount() int {
	return len(m.visible)
}

func (m Model) status() string {
	return fmt.Sprintf("Filter: %s (%d of %d records)", m.FilterLabel(), len(m.visible), len(m.records))
}
