// Package localstore keeps the board in an embedded sqlite file, one JSON document per
// key, for single-machine deployments without a postgres server.
package localstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

const (
	KeyRooms        = "tirupati_rooms"
	KeyHistory      = "tirupati_history"
	KeyTransactions = "tirupati_transactions"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// mu serializes read-modify-write cycles on the documents.
	mu sync.Mutex
}

// Open opens (or creates) the sqlite file at path. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// get returns the raw document under key, or nil when it was never written.
func get(ctx context.Context, q querier, key string) ([]byte, error) {
	var value string

	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return []byte(value), nil
}

func put(ctx context.Context, e execer, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	_, err = e.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// loadRooms applies the layout guard: documents that are missing, malformed or from an
// older numbering scheme are replaced by freshly generated rooms.
func (s *Store) loadRooms(ctx context.Context, q querier) ([]room.Room, error) {
	raw, err := get(ctx, q, KeyRooms)
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return room.Generate(), nil
	}

	var docs []roomDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		s.logger.Error("failed to parse saved rooms, regenerating", "error", err)
		return room.Generate(), nil
	}

	rooms := make([]room.Room, 0, len(docs))
	for _, d := range docs {
		rooms = append(rooms, d.toRoom())
	}

	if !room.SameLayout(rooms) {
		s.logger.Warn("saved rooms use an old layout, regenerating", "saved", len(rooms))
		return room.Generate(), nil
	}

	return rooms, nil
}

func (s *Store) loadHistory(ctx context.Context, q querier) ([]room.HistoryRecord, error) {
	raw, err := get(ctx, q, KeyHistory)
	if err != nil || raw == nil {
		return nil, err
	}

	var docs []historyDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		s.logger.Error("failed to parse saved history, starting empty", "error", err)
		return nil, nil
	}

	history := make([]room.HistoryRecord, 0, len(docs))
	for _, d := range docs {
		history = append(history, d.toRecord())
	}

	return history, nil
}

func (s *Store) loadPayments(ctx context.Context, q querier) ([]room.Payment, error) {
	raw, err := get(ctx, q, KeyTransactions)
	if err != nil || raw == nil {
		return nil, err
	}

	var docs []paymentDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		s.logger.Error("failed to parse saved transactions, starting empty", "error", err)
		return nil, nil
	}

	payments := make([]room.Payment, 0, len(docs))
	for _, d := range docs {
		payments = append(payments, d.toPayment())
	}

	return payments, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadRooms(ctx, s.db)
}

func (s *Store) ListHistory(ctx context.Context) ([]room.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadHistory(ctx, s.db)
}

func (s *Store) ListPayments(ctx context.Context, date string) ([]room.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadPayments(ctx, s.db)
	if err != nil {
		return nil, err
	}

	var payments []room.Payment

	for _, p := range all {
		if p.PaymentDate == date {
			payments = append(payments, p)
		}
	}

	return payments, nil
}

// update runs fn inside one sqlite transaction.
func (s *Store) update(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) replaceRoom(ctx context.Context, tx *sql.Tx, r room.Room) error {
	rooms, err := s.loadRooms(ctx, tx)
	if err != nil {
		return err
	}

	reg := room.NewRegistry(rooms)
	if err := reg.Put(r); err != nil {
		return err
	}

	return put(ctx, tx, KeyRooms, roomDocs(reg.Rooms()))
}

func (s *Store) appendPayment(ctx context.Context, tx *sql.Tx, p room.Payment) error {
	payments, err := s.loadPayments(ctx, tx)
	if err != nil {
		return err
	}

	payments = append(payments, p)

	docs := make([]paymentDoc, 0, len(payments))
	for _, p := range payments {
		docs = append(docs, newPaymentDoc(p))
	}

	return put(ctx, tx, KeyTransactions, docs)
}

func (s *Store) CheckIn(ctx context.Context, r room.Room, p room.Payment) error {
	return s.update(ctx, func(tx *sql.Tx) error {
		if err := s.replaceRoom(ctx, tx, r); err != nil {
			return err
		}

		return s.appendPayment(ctx, tx, p)
	})
}

func (s *Store) CheckOut(ctx context.Context, r room.Room, rec room.HistoryRecord) error {
	return s.update(ctx, func(tx *sql.Tx) error {
		if err := s.replaceRoom(ctx, tx, r); err != nil {
			return err
		}

		history, err := s.loadHistory(ctx, tx)
		if err != nil {
			return err
		}

		history = append([]room.HistoryRecord{rec}, history...)

		docs := make([]historyDoc, 0, len(history))
		for _, h := range history {
			docs = append(docs, newHistoryDoc(h))
		}

		return put(ctx, tx, KeyHistory, docs)
	})
}

func (s *Store) RecordPayment(ctx context.Context, p room.Payment) error {
	return s.update(ctx, func(tx *sql.Tx) error {
		return s.appendPayment(ctx, tx, p)
	})
}

// roomDoc is the stored shape of a room. Available rooms keep an empty price string.
type roomDoc struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Floor       string          `json:"floor"`
	Status      string          `json:"status"`
	GuestName   string          `json:"guestName"`
	Price       json.RawMessage `json:"price"`
	EntryNumber string          `json:"entryNumber,omitempty"`
	CheckInTime *time.Time      `json:"checkInTime"`
}

func roomDocs(rooms []room.Room) []roomDoc {
	docs := make([]roomDoc, 0, len(rooms))

	for _, r := range rooms {
		price := json.RawMessage(`""`)
		if r.Status == room.StatusOccupied {
			price = json.RawMessage(r.Price.String())
		}

		docs = append(docs, roomDoc{
			ID:          r.ID,
			Number:      r.Number,
			Floor:       string(r.Floor),
			Status:      string(r.Status),
			GuestName:   r.GuestName,
			Price:       price,
			EntryNumber: r.EntryNumber,
			CheckInTime: r.CheckInTime,
		})
	}

	return docs
}

func (d roomDoc) toRoom() room.Room {
	return room.Room{
		ID:          d.ID,
		Number:      d.Number,
		Floor:       room.Floor(d.Floor),
		Status:      room.Status(d.Status),
		GuestName:   d.GuestName,
		Price:       coercePrice(d.Price),
		EntryNumber: d.EntryNumber,
		CheckInTime: d.CheckInTime,
	}
}

type historyDoc struct {
	ID           json.RawMessage `json:"id"`
	RoomNumber   string          `json:"roomNumber"`
	GuestName    string          `json:"guestName"`
	Price        json.RawMessage `json:"price"`
	EntryNumber  string          `json:"entryNumber,omitempty"`
	CheckInTime  *time.Time      `json:"checkInTime"`
	CheckOutTime *time.Time      `json:"checkOutTime"`
}

func newHistoryDoc(h room.HistoryRecord) historyDoc {
	id, _ := json.Marshal(h.ID.String())
	in, out := h.CheckInTime, h.CheckOutTime

	return historyDoc{
		ID:           id,
		RoomNumber:   h.RoomNumber,
		GuestName:    h.GuestName,
		Price:        json.RawMessage(h.Price.String()),
		EntryNumber:  h.EntryNumber,
		CheckInTime:  &in,
		CheckOutTime: &out,
	}
}

func (d historyDoc) toRecord() room.HistoryRecord {
	rec := room.HistoryRecord{
		ID:          recordID(d.ID),
		RoomNumber:  d.RoomNumber,
		GuestName:   d.GuestName,
		Price:       coercePrice(d.Price),
		EntryNumber: d.EntryNumber,
	}

	if d.CheckInTime != nil {
		rec.CheckInTime = *d.CheckInTime
	}

	if d.CheckOutTime != nil {
		rec.CheckOutTime = *d.CheckOutTime
	}

	return rec
}

type paymentDoc struct {
	ID          uuid.UUID       `json:"id"`
	RoomNumber  string          `json:"roomNumber"`
	GuestName   string          `json:"guestName"`
	EntryNumber string          `json:"entryNumber"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"paymentDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newPaymentDoc(p room.Payment) paymentDoc {
	return paymentDoc(p)
}

func (d paymentDoc) toPayment() room.Payment {
	return room.Payment(d)
}

// coercePrice reads a price stored as a number, a numeric string, "" or null.
// Anything that is not a number counts as zero.
func coercePrice(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}

		raw = []byte(s)
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// recordID accepts both uuid strings and the millisecond timestamps older boards used
// as ids. Legacy ids map to a stable name-based uuid.
func recordID(raw json.RawMessage) uuid.UUID {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := uuid.Parse(s); err == nil {
			return id
		}
	}

	return uuid.NewSHA1(uuid.NameSpaceOID, bytes.TrimSpace(raw))
}
