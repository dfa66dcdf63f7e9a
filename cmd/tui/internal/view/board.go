package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/booking"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

const refreshInterval = 3 * time.Second

type boardState int

const (
	boardStateBrowse boardState = iota
	boardStateCheckIn
	boardStateOccupied
)

const (
	actionPayment  = "payment"
	actionCheckOut = "checkout"
)

// boardInput holds form bindings. It lives behind a pointer so the form keeps writing
// to the same values after the model is copied.
type boardInput struct {
	guest  string
	price  string
	entry  string
	action string
	amount string
}

type BoardModel struct {
	CommonModel
	mgr *booking.Manager

	state  boardState
	table  table.Model
	rooms  []room.Room
	target room.Room
	form   *huh.Form
	input  *boardInput

	status string
	err    error
}

func NewBoardModel(mgr *booking.Manager) BoardModel {
	return BoardModel{
		mgr: mgr,
		table: newTable([]table.Column{
			{Title: "Room", Width: 6},
			{Title: "Floor", Width: 13},
			{Title: "Status", Width: 10},
			{Title: "Guest", Width: 24},
			{Title: "Price", Width: 10},
			{Title: "Entry", Width: 8},
			{Title: "Checked in", Width: 17},
		}),
		input: &boardInput{},
	}
}

func (m BoardModel) Title() string { return "Room Board" }
func (m BoardModel) ShortHelp() string {
	if m.state != boardStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: check in / manage | r: reload from store"
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.loadRoomsCmd(), tickCmd())
}

type boardTickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return boardTickMsg{} })
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRoomsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rooms = msg.rooms
		m.refreshTable()

		return m, nil

	case boardTickMsg:
		// Picks up rooms merged from the change feed.
		return m, tea.Batch(m.loadRoomsCmd(), tickCmd())

	case boardActionMsg:
		m.status = msg.result
		if msg.err != nil {
			m.status = errorStyle(msg.err.Error())
		}

		m.state = boardStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadRoomsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == boardStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m BoardModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.reloadCmd()
		case "enter":
			return m.openForm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BoardModel) openForm() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rooms) {
		return m, nil
	}

	m.target = m.rooms[idx]
	m.input = &boardInput{action: actionPayment}
	m.status = ""

	if m.target.Status == room.StatusAvailable {
		m.form = checkInForm(m.input)
		m.state = boardStateCheckIn
	} else {
		m.form = occupiedForm(m.input)
		m.state = boardStateOccupied
	}

	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number")
	}

	if d.IsNegative() {
		return errors.New("amount cannot be negative")
	}

	return nil
}

func checkInForm(in *boardInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("guest").
				Title("Guest Name").
				Value(&in.guest).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("guest name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("price").
				Title("Price").
				Placeholder("0.00").
				Value(&in.price).
				Validate(validateAmount),

			huh.NewInput().
				Key("entry").
				Title("Entry No").
				Description("Optional ledger reference").
				Value(&in.entry),
		),
	).WithWidth(45).WithShowHelp(false)
}

func occupiedForm(in *boardInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Action").
				Options(
					huh.NewOption("Add daily payment", actionPayment),
					huh.NewOption("Check out", actionCheckOut),
				).
				Value(&in.action),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&in.amount).
				Validate(validateAmount),
		).WithHideFunc(func() bool { return in.action != actionPayment }),
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Check the guest out now?").
				Affirmative("Check out").
				Negative("Cancel"),
		).WithHideFunc(func() bool { return in.action != actionCheckOut }),
	).WithWidth(45).WithShowHelp(false)
}

func (m BoardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = boardStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == boardStateCheckIn {
		return m, m.checkInCmd()
	}

	if m.input.action == actionCheckOut {
		if !m.form.GetBool("confirm") {
			return m, func() tea.Msg { return boardActionMsg{result: "Check-out cancelled"} }
		}

		return m, m.checkOutCmd()
	}

	return m, m.paymentCmd()
}

func (m BoardModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	occupied := 0

	for _, r := range m.rooms {
		if r.Status == room.StatusOccupied {
			occupied++
		}
	}

	header := fmt.Sprintf("Occupied %s of %d", activeStyle(fmt.Sprint(occupied)), len(m.rooms))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.form != nil && m.state != boardStateBrowse {
		title := fmt.Sprintf("Check in %s", m.target.Number)
		if m.state == boardStateOccupied {
			title = fmt.Sprintf("%s · %s (%s)", m.target.Number, m.target.GuestName, FormatMoney(m.target.Price))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BoardModel) refreshTable() {
	loc := m.mgr.Location()
	rows := make([]table.Row, 0, len(m.rooms))

	for _, r := range m.rooms {
		price := ""
		if r.Status == room.StatusOccupied {
			price = FormatMoney(r.Price)
		}

		rows = append(rows, table.Row{
			r.Number,
			string(r.Floor),
			string(r.Status),
			r.GuestName,
			price,
			r.EntryNumber,
			FormatTime(r.CheckInTime, loc),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadRoomsMsg struct {
	rooms []room.Room
	err   error
}

func (m BoardModel) loadRoomsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rooms, err := m.mgr.Rooms(ctx)

		return loadRoomsMsg{rooms: rooms, err: err}
	}
}

type boardActionMsg struct {
	result string
	err    error
}

func (m BoardModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.mgr.Reload(ctx); err != nil {
			return boardActionMsg{err: err}
		}

		return boardActionMsg{result: "Board reloaded"}
	}
}

func (m BoardModel) checkInCmd() tea.Cmd {
	roomID := m.target.ID
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		price, err := decimal.NewFromString(strings.TrimSpace(in.price))
		if err != nil {
			return boardActionMsg{err: err}
		}

		r, err := m.mgr.CheckIn(ctx, roomID, booking.CheckInParams{
			GuestName:   in.guest,
			Price:       price,
			EntryNumber: in.entry,
		})
		if err != nil {
			return boardActionMsg{err: err}
		}

		return boardActionMsg{result: fmt.Sprintf("%s checked in to %s", r.GuestName, r.Number)}
	}
}

func (m BoardModel) checkOutCmd() tea.Cmd {
	roomID := m.target.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.mgr.CheckOut(ctx, roomID)
		if err != nil {
			return boardActionMsg{err: err}
		}

		return boardActionMsg{result: fmt.Sprintf("%s checked out of %s", rec.GuestName, rec.RoomNumber)}
	}
}

func (m BoardModel) paymentCmd() tea.Cmd {
	roomID := m.target.ID
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := decimal.NewFromString(strings.TrimSpace(in.amount))
		if err != nil {
			return boardActionMsg{err: err}
		}

		p, err := m.mgr.AddPayment(ctx, roomID, amount)
		if err != nil {
			return boardActionMsg{err: err}
		}

		return boardActionMsg{result: fmt.Sprintf("Recorded %s for %s on %s", FormatMoney(p.Amount), p.RoomNumber, p.PaymentDate)}
	}
}
