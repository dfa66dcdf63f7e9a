package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

// Store is the postgres-backed booking repository.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectRoomColumns = `id, number, floor, status, guest_name, price, entry_number, check_in_time`

// scanRoom reads a rooms row. NULL columns become the available defaults.
func scanRoom(s scanner) (room.Room, error) {
	var (
		r                  room.Room
		floor, status      string
		guest, entryNumber sql.NullString
		price              decimal.NullDecimal
		checkIn            sql.NullTime
	)

	if err := s.Scan(&r.ID, &r.Number, &floor, &status, &guest, &price, &entryNumber, &checkIn); err != nil {
		return room.Room{}, err
	}

	r.Floor = room.Floor(floor)
	r.Status = room.Status(status)
	r.GuestName = guest.String
	r.Price = price.Decimal
	r.EntryNumber = entryNumber.String

	if checkIn.Valid {
		r.CheckInTime = &checkIn.Time
	}

	return r, nil
}

const selectHistoryColumns = `id, room_number, guest_name, price, entry_number, check_in_time, check_out_time`

func scanHistory(s scanner) (room.HistoryRecord, error) {
	var (
		rec                room.HistoryRecord
		guest, entryNumber sql.NullString
		price              decimal.NullDecimal
	)

	if err := s.Scan(&rec.ID, &rec.RoomNumber, &guest, &price, &entryNumber, &rec.CheckInTime, &rec.CheckOutTime); err != nil {
		return room.HistoryRecord{}, err
	}

	rec.GuestName = guest.String
	rec.Price = price.Decimal
	rec.EntryNumber = entryNumber.String

	return rec, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

func upsertRoom(ctx context.Context, e execer, r room.Room) error {
	query := `
		INSERT INTO rooms (id, number, floor, status, guest_name, price, entry_number, check_in_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			guest_name = EXCLUDED.guest_name,
			price = EXCLUDED.price,
			entry_number = EXCLUDED.entry_number,
			check_in_time = EXCLUDED.check_in_time
	`

	price := decimal.NullDecimal{Decimal: r.Price, Valid: r.Status == room.StatusOccupied}

	_, err := e.ExecContext(ctx, query,
		r.ID,
		r.Number,
		string(r.Floor),
		string(r.Status),
		nullString(r.GuestName),
		price,
		nullString(r.EntryNumber),
		nullTime(r.CheckInTime),
	)
	if err != nil {
		return fmt.Errorf("upserting room %s: %w", r.ID, err)
	}

	return nil
}

func insertPayment(ctx context.Context, e execer, p room.Payment) error {
	query := `
		INSERT INTO transactions (id, room_number, guest_name, entry_number, amount, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
	`

	_, err := e.ExecContext(ctx, query,
		p.ID,
		p.RoomNumber,
		nullString(p.GuestName),
		nullString(p.EntryNumber),
		p.Amount,
		p.PaymentDate,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	return nil
}

func (s *Store) ListRooms(ctx context.Context) ([]room.Room, error) {
	query := `SELECT ` + selectRoomColumns + `
		FROM rooms
		ORDER BY CASE floor
			WHEN 'Ground Floor' THEN 0
			WHEN '1st Floor' THEN 1
			ELSE 2
		END, number`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []room.Room

	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}

		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}

	return rooms, nil
}

func (s *Store) ListHistory(ctx context.Context) ([]room.HistoryRecord, error) {
	query := `SELECT ` + selectHistoryColumns + ` FROM history ORDER BY check_out_time DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var history []room.HistoryRecord

	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}

		history = append(history, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return history, nil
}

// CheckIn stores the occupied room and the opening payment in one database transaction.
func (s *Store) CheckIn(ctx context.Context, r room.Room, p room.Payment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := upsertRoom(ctx, dbTx, r); err != nil {
		return err
	}

	if err := insertPayment(ctx, dbTx, p); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// CheckOut stores the vacated room and its history record in one database transaction,
// so a stay is never lost between the two writes.
func (s *Store) CheckOut(ctx context.Context, r room.Room, rec room.HistoryRecord) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := upsertRoom(ctx, dbTx, r); err != nil {
		return err
	}

	query := `
		INSERT INTO history (id, room_number, guest_name, price, entry_number, check_in_time, check_out_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := dbTx.ExecContext(ctx, query,
		rec.ID,
		rec.RoomNumber,
		nullString(rec.GuestName),
		rec.Price,
		nullString(rec.EntryNumber),
		rec.CheckInTime,
		rec.CheckOutTime,
	); err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) RecordPayment(ctx context.Context, p room.Payment) error {
	return insertPayment(ctx, s.db, p)
}

func (s *Store) ListPayments(ctx context.Context, date string) ([]room.Payment, error) {
	query := `
		SELECT id, room_number, guest_name, entry_number, amount, to_char(payment_date, 'YYYY-MM-DD'), created_at
		FROM transactions
		WHERE payment_date = $1::date
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []room.Payment

	for rows.Next() {
		var (
			p                  room.Payment
			guest, entryNumber sql.NullString
		)

		if err := rows.Scan(&p.ID, &p.RoomNumber, &guest, &entryNumber, &p.Amount, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.GuestName = guest.String
		p.EntryNumber = entryNumber.String

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}

// Seed inserts rooms that do not exist yet. Existing rows are left untouched.
func (s *Store) Seed(ctx context.Context, rooms []room.Room) error {
	query := `
		INSERT INTO rooms (id, number, floor, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, r := range rooms {
		if _, err := dbTx.ExecContext(ctx, query, r.ID, r.Number, string(r.Floor), string(r.Status)); err != nil {
			return fmt.Errorf("seeding room %s: %w", r.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
