package view

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/roomboard/internal/booking"
	"github.com/MrJamesThe3rd/roomboard/internal/export"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

type HistoryModel struct {
	CommonModel
	mgr *booking.Manager

	search  textinput.Model
	table   table.Model
	all     []room.HistoryRecord
	matched []room.HistoryRecord

	status string
	err    error
}

func NewHistoryModel(mgr *booking.Manager) HistoryModel {
	ti := textinput.New()
	ti.Placeholder = "guest or room"
	ti.Width = 30
	ti.Focus()

	return HistoryModel{
		mgr:    mgr,
		search: ti,
		table: newTable([]table.Column{
			{Title: "Room", Width: 6},
			{Title: "Guest", Width: 24},
			{Title: "Entry", Width: 8},
			{Title: "Price", Width: 10},
			{Title: "Check-in", Width: 17},
			{Title: "Check-out", Width: 17},
		}),
	}
}

func (m HistoryModel) Title() string     { return "Booking History" }
func (m HistoryModel) ShortHelp() string { return "Esc: back | type to search | ctrl+x: export xlsx" }

func (m HistoryModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistoryCmd())
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "ctrl+x":
			return m, exportHistoryCmd(m.matched, m.mgr.Location())
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)

			return m, cmd
		}

	case loadHistoryMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.all = msg.history
		m.applySearch()

		return m, nil

	case exportedMsg:
		m.status = fmt.Sprintf("Saved %s", msg.path)
		if msg.err != nil {
			m.status = errorStyle(msg.err.Error())
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()

	return m, cmd
}

func (m *HistoryModel) applySearch() {
	m.matched = room.SearchHistory(m.all, m.search.Value())
	loc := m.mgr.Location()

	rows := make([]table.Row, 0, len(m.matched))

	for _, rec := range m.matched {
		rows = append(rows, table.Row{
			rec.RoomNumber,
			rec.GuestName,
			rec.EntryNumber,
			FormatMoney(rec.Price),
			FormatTime(&rec.CheckInTime, loc),
			FormatTime(&rec.CheckOutTime, loc),
		})
	}

	m.table.SetRows(rows)
}

func (m HistoryModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	header := fmt.Sprintf("Search: %s  %s", m.search.View(),
		activeStyle(fmt.Sprintf("%d of %d stays", len(m.matched), len(m.all))))

	lines := []string{header, "", boxed(m.table.View())}

	if m.status != "" {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	lines = append(lines, lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Messages

type loadHistoryMsg struct {
	history []room.HistoryRecord
	err     error
}

func (m HistoryModel) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		history, err := m.mgr.History(ctx)

		return loadHistoryMsg{history: history, err: err}
	}
}

func exportHistoryCmd(records []room.HistoryRecord, loc *time.Location) tea.Cmd {
	return func() tea.Msg {
		data, err := export.HistoryWorkbook(records, loc)
		if err != nil {
			return exportedMsg{err: err}
		}

		path := "history.xlsx"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}

		return exportedMsg{path: path}
	}
}
