package room

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("room not found")
	ErrRoomOccupied  = errors.New("room is occupied")
	ErrRoomAvailable = errors.New("room is not occupied")
	ErrInvalidGuest  = errors.New("guest name is required")
	ErrInvalidAmount = errors.New("amount must not be negative")
)

// Floor groups rooms on the board.
type Floor string

const (
	FloorGround Floor = "Ground Floor"
	FloorFirst  Floor = "1st Floor"
	FloorSecond Floor = "2nd Floor"
)

// Status is the occupancy state of a room.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
)

// Room is a fixed unit of inventory. ID and Number are equal for every generated room.
type Room struct {
	ID          string
	Number      string
	Floor       Floor
	Status      Status
	GuestName   string
	Price       decimal.Decimal
	EntryNumber string
	CheckInTime *time.Time
}

// Occupy returns the room checked in to guest at the given instant.
func (r Room) Occupy(guestName string, price decimal.Decimal, entryNumber string, at time.Time) Room {
	r.Status = StatusOccupied
	r.GuestName = guestName
	r.Price = price
	r.EntryNumber = entryNumber
	r.CheckInTime = &at

	return r
}

// Vacate returns the room reset to the available defaults.
func (r Room) Vacate() Room {
	r.Status = StatusAvailable
	r.GuestName = ""
	r.Price = decimal.Zero
	r.EntryNumber = ""
	r.CheckInTime = nil

	return r
}

// Valid reports whether status agrees with the guest and check-in fields.
func (r Room) Valid() bool {
	empty := r.GuestName == "" && r.CheckInTime == nil
	return (r.Status == StatusAvailable) == empty
}

// HistoryRecord is a completed stay. Records are immutable once created.
type HistoryRecord struct {
	ID           uuid.UUID
	RoomNumber   string
	GuestName    string
	Price        decimal.Decimal
	EntryNumber  string
	CheckInTime  time.Time
	CheckOutTime time.Time
}

// Payment is a ledger entry for money collected against a room.
// PaymentDate is a local calendar date in YYYY-MM-DD form.
type Payment struct {
	ID          uuid.UUID
	RoomNumber  string
	GuestName   string
	EntryNumber string
	Amount      decimal.Decimal
	PaymentDate string
	CreatedAt   time.Time
}
