package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel is the room id whose presence marks the current numbering scheme.
const Sentinel = "G01"

var layout = []struct {
	floor  Floor
	prefix string
	count  int
}{
	{FloorGround, "G0", 4},
	{FloorFirst, "10", 8},
	{FloorSecond, "20", 8},
}

// Generate returns the full set of rooms, all available, ordered by floor then number.
func Generate() []Room {
	rooms := make([]Room, 0, GeneratedCount())

	for _, f := range layout {
		for i := 1; i <= f.count; i++ {
			num := fmt.Sprintf("%s%d", f.prefix, i)
			rooms = append(rooms, Room{
				ID:     num,
				Number: num,
				Floor:  f.floor,
				Status: StatusAvailable,
				Price:  decimal.Zero,
			})
		}
	}

	return rooms
}

// GeneratedCount is the number of rooms Generate produces.
func GeneratedCount() int {
	n := 0
	for _, f := range layout {
		n += f.count
	}

	return n
}

// SameLayout reports whether rooms were produced by the current numbering scheme.
func SameLayout(rooms []Room) bool {
	if len(rooms) != GeneratedCount() {
		return false
	}

	for _, r := range rooms {
		if r.ID == Sentinel {
			return true
		}
	}

	return false
}

// Registry is the ordered, fixed-size set of rooms. It is not safe for concurrent use;
// the booking manager owns one and touches it from a single goroutine.
type Registry struct {
	rooms []Room
	index map[string]int
}

func NewRegistry(rooms []Room) *Registry {
	reg := &Registry{
		rooms: make([]Room, len(rooms)),
		index: make(map[string]int, len(rooms)),
	}

	copy(reg.rooms, rooms)

	for i, r := range reg.rooms {
		reg.index[r.ID] = i
	}

	return reg
}

func (reg *Registry) Get(id string) (Room, error) {
	i, ok := reg.index[id]
	if !ok {
		return Room{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return reg.rooms[i], nil
}

// Put replaces the room with the same id. The registry never grows.
func (reg *Registry) Put(r Room) error {
	i, ok := reg.index[r.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}

	reg.rooms[i] = r

	return nil
}

func (reg *Registry) Rooms() []Room {
	out := make([]Room, len(reg.rooms))
	copy(out, reg.rooms)

	return out
}

func (reg *Registry) Len() int {
	return len(reg.rooms)
}

// DateOf returns the calendar date of t in loc as YYYY-MM-DD.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return t.In(loc).Format(time.DateOnly)
}

// SearchHistory keeps records whose guest name or room number contains query,
// ignoring case. Order is preserved.
func SearchHistory(records []HistoryRecord, query string) []HistoryRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	var out []HistoryRecord

	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.GuestName), q) ||
			strings.Contains(strings.ToLower(rec.RoomNumber), q) {
			out = append(out, rec)
		}
	}

	return out
}
