package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

// State exposes the in-memory board that Derived reads from.
type State interface {
	Rooms(ctx context.Context) ([]room.Room, error)
	History(ctx context.Context) ([]room.HistoryRecord, error)
}

// Derived rebuilds daily revenue from live occupancy plus the history log.
type Derived struct {
	state State
	loc   *time.Location
}

func NewDerived(state State, loc *time.Location) *Derived {
	if loc == nil {
		loc = time.Local
	}

	return &Derived{state: state, loc: loc}
}

func (d *Derived) Revenue(ctx context.Context, date string) (*Report, error) {
	rooms, err := d.state.Rooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading rooms: %w", err)
	}

	history, err := d.state.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return Compute(date, rooms, history, d.loc), nil
}

// Compute matches bookings whose check-in falls on date in loc.
// Occupied rooms come first, then history records, each in input order.
// A stay is either live or checked out, so the two streams never overlap.
func Compute(date string, rooms []room.Room, history []room.HistoryRecord, loc *time.Location) *Report {
	var records []Record

	for _, r := range rooms {
		if r.Status != room.StatusOccupied || r.CheckInTime == nil {
			continue
		}

		if room.DateOf(*r.CheckInTime, loc) != date {
			continue
		}

		records = append(records, Record{
			Source:      OriginActive,
			RoomNumber:  r.Number,
			GuestName:   r.GuestName,
			EntryNumber: r.EntryNumber,
			Price:       r.Price,
		})
	}

	for _, h := range history {
		if room.DateOf(h.CheckInTime, loc) != date {
			continue
		}

		records = append(records, Record{
			Source:      OriginHistory,
			RoomNumber:  h.RoomNumber,
			GuestName:   h.GuestName,
			EntryNumber: h.EntryNumber,
			Price:       h.Price,
		})
	}

	return newReport(date, records)
}
