package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/roomboard/internal/export"
	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
)

type RevenueModel struct {
	CommonModel
	src revenue.Source

	dateInput textinput.Model
	spinner   spinner.Model
	table     table.Model
	report    *revenue.Report

	loading bool
	status  string
	err     error
}

func NewRevenueModel(src revenue.Source, today string) RevenueModel {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = 10
	ti.Width = 12
	ti.SetValue(today)
	ti.Focus()

	return RevenueModel{
		src:       src,
		dateInput: ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		table: newTable([]table.Column{
			{Title: "Room", Width: 6},
			{Title: "Entry No", Width: 10},
			{Title: "Guest", Width: 24},
			{Title: "Price", Width: 10},
			{Title: "Source", Width: 8},
		}),
	}
}

func (m RevenueModel) Title() string     { return "Daily Revenue" }
func (m RevenueModel) ShortHelp() string { return "Esc: back | Enter: show date | ctrl+x: export xlsx" }

func (m RevenueModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.computeCmd(m.dateInput.Value()))
}

func (m RevenueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			date, err := revenue.ParseDate(m.dateInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}

			m.loading = true
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.computeCmd(date))
		case "ctrl+x":
			if m.report != nil {
				return m, exportRevenueCmd(m.report)
			}

			return m, nil
		case "up", "down":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)

			return m, cmd
		}

	case revenueMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.report = msg.report
		m.refreshTable()

		return m, nil

	case exportedMsg:
		m.status = fmt.Sprintf("Saved %s", msg.path)
		if msg.err != nil {
			m.status = errorStyle(msg.err.Error())
		}

		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)

	return m, cmd
}

func (m RevenueModel) View() string {
	lines := []string{"Date: " + m.dateInput.View(), ""}

	switch {
	case m.loading:
		lines = append(lines, m.spinner.View()+" Computing revenue...")
	case m.err != nil:
		lines = append(lines, errorStyle(fmt.Sprintf("Error: %v", m.err)))
	case m.report != nil:
		total := lipgloss.NewStyle().Bold(true).Render("Total: " + FormatMoney(m.report.Total))

		if len(m.report.Records) == 0 {
			lines = append(lines, "No revenue recorded for "+m.report.Date)
		} else {
			lines = append(lines, boxed(m.table.View()))
		}

		lines = append(lines, "", total)
	}

	if m.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *RevenueModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.report.Records))

	for _, r := range m.report.Records {
		rows = append(rows, table.Row{
			r.RoomNumber,
			r.EntryNumber,
			r.GuestName,
			FormatMoney(r.Price),
			string(r.Source),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type revenueMsg struct {
	report *revenue.Report
	err    error
}

func (m RevenueModel) computeCmd(date string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rep, err := m.src.Revenue(ctx, date)

		return revenueMsg{report: rep, err: err}
	}
}

type exportedMsg struct {
	path string
	err  error
}

func exportRevenueCmd(rep *revenue.Report) tea.Cmd {
	return func() tea.Msg {
		data, err := export.RevenueWorkbook(rep)
		if err != nil {
			return exportedMsg{err: err}
		}

		path := fmt.Sprintf("revenue-%s.xlsx", rep.Date)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}

		return exportedMsg{path: path}
	}
}
