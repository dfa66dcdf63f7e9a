package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/roomboard/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/roomboard/internal/app"
	"github.com/MrJamesThe3rd/roomboard/internal/config"
	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
)

type model struct {
	board *app.App

	currentView View

	boardView   view.BoardModel
	revenueView view.RevenueModel
	historyView view.HistoryModel
}

type View int

const (
	ViewMenu    View = 0
	ViewBoard   View = 1
	ViewRevenue View = 2
	ViewHistory View = 3
)

func initialModel(board *app.App) model {
	return model{
		board:       board,
		currentView: ViewMenu,
		boardView:   view.NewBoardModel(board.Manager),
		revenueView: view.NewRevenueModel(board.Revenue, revenue.Today(board.Location)),
		historyView: view.NewHistoryModel(board.Manager),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewBoard
				m.boardView = view.NewBoardModel(m.board.Manager)

				return m, m.boardView.Init()
			case "2":
				m.currentView = ViewRevenue
				m.revenueView = view.NewRevenueModel(m.board.Revenue, revenue.Today(m.board.Location))

				return m, m.revenueView.Init()
			case "3":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.board.Manager)

				return m, m.historyView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewBoard:
		var newModel tea.Model
		newModel, cmd = m.boardView.Update(msg)
		m.boardView = newModel.(view.BoardModel)
	case ViewRevenue:
		var newModel tea.Model
		newModel, cmd = m.revenueView.Update(msg)
		m.revenueView = newModel.(view.RevenueModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Roomboard\n\n" +
				"1. Room Board\n" +
				"2. Daily Revenue\n" +
				"3. Booking History\n\n" +
				"q. Quit",
		)
	case ViewBoard:
		return m.boardView.View()
	case ViewRevenue:
		return m.revenueView.View()
	case ViewHistory:
		return m.historyView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := tea.LogToFile("roomboard-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("failed to assemble board", "error", err)
		os.Exit(1)
	}
	defer board.Close()

	go func() {
		if err := board.Manager.Run(ctx); err != nil {
			slog.Error("booking manager failed", "error", err)
		}
	}()

	p := tea.NewProgram(initialModel(board))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
