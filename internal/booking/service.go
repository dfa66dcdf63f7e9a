package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

var ErrStopped = errors.New("booking manager stopped")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=booking
type Repository interface {
	ListRooms(ctx context.Context) ([]room.Room, error)
	ListHistory(ctx context.Context) ([]room.HistoryRecord, error)

	// CheckIn stores the occupied room and its opening payment together.
	CheckIn(ctx context.Context, r room.Room, p room.Payment) error
	// CheckOut stores the vacated room and the closing history record together.
	CheckOut(ctx context.Context, r room.Room, rec room.HistoryRecord) error
	RecordPayment(ctx context.Context, p room.Payment) error
	ListPayments(ctx context.Context, date string) ([]room.Payment, error)
}

// Feed delivers room rows changed elsewhere. Listen blocks until ctx is done or the
// feed fails.
type Feed interface {
	Listen(ctx context.Context, apply func(room.Room)) error
}

type state struct {
	rooms   *room.Registry
	history []room.HistoryRecord
}

// Manager owns the board. All reads and writes of state run on the goroutine started
// by Run; mutators and the feed both submit operations to it.
type Manager struct {
	repo      Repository
	feed      Feed
	logger    *slog.Logger
	now       func() time.Time
	loc       *time.Location
	feedRetry time.Duration

	ops     chan func(*state)
	stopped chan struct{}
	state   state
}

type Option func(*Manager)

func WithFeed(f Feed) Option {
	return func(m *Manager) { m.feed = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func WithFeedRetry(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.feedRetry = d
		}
	}
}

func NewManager(repo Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:      repo,
		logger:    slog.Default(),
		now:       time.Now,
		loc:       time.Local,
		feedRetry: 5 * time.Second,
		ops:       make(chan func(*state)),
		stopped:   make(chan struct{}),
	}

	for _, o := range opts {
		o(m)
	}

	return m
}

// Location is the time zone used for payment dates.
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Run loads the board and serves operations until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.stopped)

	rooms, history, err := m.fetch(ctx)
	if err != nil {
		m.logger.Error("loading board failed, starting from defaults", "error", err)

		rooms, history = room.Generate(), nil
	}

	m.state = state{rooms: room.NewRegistry(rooms), history: history}

	if m.feed != nil {
		go m.listen(ctx)
	}

	m.logger.Info("booking manager started", "rooms", m.state.rooms.Len(), "history", len(history))

	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-m.ops:
			op(&m.state)
		}
	}
}

func (m *Manager) listen(ctx context.Context) {
	for {
		err := m.feed.Listen(ctx, func(r room.Room) {
			m.merge(ctx, r)
		})
		if ctx.Err() != nil {
			return
		}

		m.logger.Error("room feed stopped, retrying", "error", err, "retry_in", m.feedRetry)

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.feedRetry):
		}
	}
}

// merge applies a pushed room row. The last write to reach the state goroutine wins.
func (m *Manager) merge(ctx context.Context, r room.Room) {
	err := m.exec(ctx, func(s *state) {
		if err := s.rooms.Put(r); err != nil {
			m.logger.Warn("ignoring pushed room", "room_id", r.ID, "error", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Error("merging pushed room", "room_id", r.ID, "error", err)
	}
}

// exec runs op on the state goroutine and waits for it to finish.
func (m *Manager) exec(ctx context.Context, op func(*state)) error {
	done := make(chan struct{})

	select {
	case m.ops <- func(s *state) {
		defer close(done)
		op(s)
	}:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrStopped
	}

	<-done

	return nil
}

func (m *Manager) fetch(ctx context.Context) ([]room.Room, []room.HistoryRecord, error) {
	rooms, err := m.repo.ListRooms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing rooms: %w", err)
	}

	history, err := m.repo.ListHistory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing history: %w", err)
	}

	if len(rooms) == 0 {
		rooms = room.Generate()
	}

	return rooms, history, nil
}

// Reload replaces the local board wholesale with the repository's version.
func (m *Manager) Reload(ctx context.Context) error {
	rooms, history, err := m.fetch(ctx)
	if err != nil {
		return err
	}

	return m.exec(ctx, func(s *state) {
		s.rooms = room.NewRegistry(rooms)
		s.history = history
	})
}

// reconcile is the single recovery path for a failed write: the optimistic change is
// not undone field by field, the board is reloaded from the repository instead.
func (m *Manager) reconcile(ctx context.Context, action, roomID string, cause error) {
	m.logger.Error("persisting change failed, reloading board", "action", action, "room_id", roomID, "error", cause)

	if err := m.Reload(ctx); err != nil {
		m.logger.Error("reloading board failed", "action", action, "room_id", roomID, "error", err)
	}
}

type CheckInParams struct {
	GuestName   string
	Price       decimal.Decimal
	EntryNumber string
}

// CheckIn occupies an available room and records the opening payment dated today.
func (m *Manager) CheckIn(ctx context.Context, roomID string, params CheckInParams) (room.Room, error) {
	guest := strings.TrimSpace(params.GuestName)
	if guest == "" {
		return room.Room{}, room.ErrInvalidGuest
	}

	if params.Price.IsNegative() {
		return room.Room{}, room.ErrInvalidAmount
	}

	now := m.now()

	var (
		occupied room.Room
		opErr    error
	)

	err := m.exec(ctx, func(s *state) {
		r, err := s.rooms.Get(roomID)
		if err != nil {
			opErr = err
			return
		}

		if r.Status == room.StatusOccupied {
			opErr = fmt.Errorf("%w: %s", room.ErrRoomOccupied, roomID)
			return
		}

		occupied = r.Occupy(guest, params.Price, strings.TrimSpace(params.EntryNumber), now)
		opErr = s.rooms.Put(occupied)
	})
	if err != nil {
		return room.Room{}, err
	}

	if opErr != nil {
		return room.Room{}, opErr
	}

	payment := m.payment(occupied, params.Price, now)

	pctx := context.WithoutCancel(ctx)
	if err := m.repo.CheckIn(pctx, occupied, payment); err != nil {
		m.reconcile(pctx, "check_in", roomID, err)
		return occupied, fmt.Errorf("persisting check-in: %w", err)
	}

	m.logger.Info("room checked in", "room_id", roomID, "guest", guest, "price", params.Price.String())

	return occupied, nil
}

// CheckOut closes the stay of an occupied room and appends it to history.
// Checking out an available room is rejected with room.ErrRoomAvailable.
func (m *Manager) CheckOut(ctx context.Context, roomID string) (room.HistoryRecord, error) {
	now := m.now()

	var (
		vacated room.Room
		record  room.HistoryRecord
		opErr   error
	)

	err := m.exec(ctx, func(s *state) {
		r, err := s.rooms.Get(roomID)
		if err != nil {
			opErr = err
			return
		}

		if r.Status != room.StatusOccupied {
			opErr = fmt.Errorf("%w: %s", room.ErrRoomAvailable, roomID)
			return
		}

		checkIn := now
		if r.CheckInTime != nil && !r.CheckInTime.After(now) {
			checkIn = *r.CheckInTime
		}

		record = room.HistoryRecord{
			ID:           uuid.New(),
			RoomNumber:   r.Number,
			GuestName:    r.GuestName,
			Price:        r.Price,
			EntryNumber:  r.EntryNumber,
			CheckInTime:  checkIn,
			CheckOutTime: now,
		}

		vacated = r.Vacate()
		if opErr = s.rooms.Put(vacated); opErr != nil {
			return
		}

		s.history = append([]room.HistoryRecord{record}, s.history...)
	})
	if err != nil {
		return room.HistoryRecord{}, err
	}

	if opErr != nil {
		return room.HistoryRecord{}, opErr
	}

	pctx := context.WithoutCancel(ctx)
	if err := m.repo.CheckOut(pctx, vacated, record); err != nil {
		m.reconcile(pctx, "check_out", roomID, err)
		return record, fmt.Errorf("persisting check-out: %w", err)
	}

	m.logger.Info("room checked out", "room_id", roomID, "history_id", record.ID)

	return record, nil
}

// AddPayment records money collected from the guest of an occupied room. The room
// itself is left untouched.
func (m *Manager) AddPayment(ctx context.Context, roomID string, amount decimal.Decimal) (room.Payment, error) {
	if amount.IsNegative() {
		return room.Payment{}, room.ErrInvalidAmount
	}

	now := m.now()

	var (
		payment room.Payment
		opErr   error
	)

	err := m.exec(ctx, func(s *state) {
		r, err := s.rooms.Get(roomID)
		if err != nil {
			opErr = err
			return
		}

		if r.Status != room.StatusOccupied {
			opErr = fmt.Errorf("%w: %s", room.ErrRoomAvailable, roomID)
			return
		}

		payment = m.payment(r, amount, now)
	})
	if err != nil {
		return room.Payment{}, err
	}

	if opErr != nil {
		return room.Payment{}, opErr
	}

	pctx := context.WithoutCancel(ctx)
	if err := m.repo.RecordPayment(pctx, payment); err != nil {
		m.reconcile(pctx, "add_payment", roomID, err)
		return payment, fmt.Errorf("persisting payment: %w", err)
	}

	m.logger.Info("payment recorded", "room_id", roomID, "amount", amount.String(), "date", payment.PaymentDate)

	return payment, nil
}

func (m *Manager) payment(r room.Room, amount decimal.Decimal, at time.Time) room.Payment {
	return room.Payment{
		ID:          uuid.New(),
		RoomNumber:  r.Number,
		GuestName:   r.GuestName,
		EntryNumber: r.EntryNumber,
		Amount:      amount,
		PaymentDate: room.DateOf(at, m.loc),
		CreatedAt:   at,
	}
}

func (m *Manager) Rooms(ctx context.Context) ([]room.Room, error) {
	var rooms []room.Room

	err := m.exec(ctx, func(s *state) {
		rooms = s.rooms.Rooms()
	})

	return rooms, err
}

func (m *Manager) Room(ctx context.Context, id string) (room.Room, error) {
	var (
		r     room.Room
		opErr error
	)

	if err := m.exec(ctx, func(s *state) {
		r, opErr = s.rooms.Get(id)
	}); err != nil {
		return room.Room{}, err
	}

	return r, opErr
}

// History returns completed stays, newest first.
func (m *Manager) History(ctx context.Context) ([]room.HistoryRecord, error) {
	var history []room.HistoryRecord

	err := m.exec(ctx, func(s *state) {
		history = make([]room.HistoryRecord, len(s.history))
		copy(history, s.history)
	})

	return history, err
}
