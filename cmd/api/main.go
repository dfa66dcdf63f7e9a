package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/roomboard/internal/app"
	"github.com/MrJamesThe3rd/roomboard/internal/config"
	roomboardHttp "github.com/MrJamesThe3rd/roomboard/internal/http"
	historyHandler "github.com/MrJamesThe3rd/roomboard/internal/http/history"
	revenueHandler "github.com/MrJamesThe3rd/roomboard/internal/http/revenue"
	roomHandler "github.com/MrJamesThe3rd/roomboard/internal/http/room"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("failed to assemble board", "error", err)
		os.Exit(1)
	}
	defer board.Close()

	managerDone := make(chan error, 1)

	go func() { managerDone <- board.Manager.Run(ctx) }()

	var (
		roomsH   = roomHandler.NewHandler(board.Manager)
		historyH = historyHandler.NewHandler(board.Manager)
		revenueH = revenueHandler.NewHandler(board.Revenue, board.Location)
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      roomboardHttp.New(roomsH, historyH, revenueH),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		stop()
	}

	if err := <-managerDone; err != nil {
		slog.Error("booking manager failed", "error", err)
	}
}
