// Package app assembles the board from configuration: the backing store, the booking
// manager and the revenue source. Both the API server and the TUI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/roomboard/internal/booking"
	"github.com/MrJamesThe3rd/roomboard/internal/booking/localstore"
	"github.com/MrJamesThe3rd/roomboard/internal/booking/store"
	"github.com/MrJamesThe3rd/roomboard/internal/config"
	"github.com/MrJamesThe3rd/roomboard/internal/database"
	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

type App struct {
	Manager  *booking.Manager
	Revenue  revenue.Source
	Location *time.Location

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Location: loc}

	repo, opts, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts = append(opts,
		booking.WithLogger(logger),
		booking.WithLocation(loc),
		booking.WithFeedRetry(cfg.Feed.Retry),
	)

	a.Manager = booking.NewManager(repo, opts...)
	a.Revenue = NewRevenueSource(cfg.Revenue.Source, repo, a.Manager, loc)

	logger.Info("board assembled",
		"store", cfg.Store.Backend,
		"revenue_source", cfg.Revenue.Source,
		"timezone", loc.String(),
	)

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (booking.Repository, []booking.Option, error) {
	switch cfg.Store.Backend {
	case config.BackendLocal:
		ls, err := localstore.Open(ctx, cfg.Store.LocalPath, logger)
		if err != nil {
			return nil, nil, err
		}

		a.closers = append(a.closers, ls.Close)

		return ls, nil, nil
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.closers = append(a.closers, db.Close)

		if err := database.Migrate(ctx, db); err != nil {
			return nil, nil, err
		}

		st := store.New(db)
		if err := st.Seed(ctx, room.Generate()); err != nil {
			return nil, nil, fmt.Errorf("seeding rooms: %w", err)
		}

		feed := store.NewFeed(cfg.ConnectionString(), logger)

		return st, []booking.Option{booking.WithFeed(feed)}, nil
	}
}

// NewRevenueSource picks the revenue implementation for a deployment.
func NewRevenueSource(kind string, payments revenue.PaymentLister, state revenue.State, loc *time.Location) revenue.Source {
	if kind == config.RevenueDerived {
		return revenue.NewDerived(state, loc)
	}

	return revenue.NewLedger(payments)
}

func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
