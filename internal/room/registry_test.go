package room_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

func TestGenerate(t *testing.T) {
	rooms := room.Generate()

	require.Len(t, rooms, 20)
	assert.Equal(t, 20, room.GeneratedCount())

	wantIDs := []string{
		"G01", "G02", "G03", "G04",
		"101", "102", "103", "104", "105", "106", "107", "108",
		"201", "202", "203", "204", "205", "206", "207", "208",
	}

	for i, r := range rooms {
		assert.Equal(t, wantIDs[i], r.ID)
		assert.Equal(t, r.ID, r.Number)
		assert.Equal(t, room.StatusAvailable, r.Status)
		assert.Empty(t, r.GuestName)
		assert.Nil(t, r.CheckInTime)
		assert.True(t, r.Price.IsZero())
		assert.True(t, r.Valid())
	}

	assert.Equal(t, room.FloorGround, rooms[0].Floor)
	assert.Equal(t, room.FloorFirst, rooms[4].Floor)
	assert.Equal(t, room.FloorSecond, rooms[19].Floor)
}

func TestGenerate_Idempotent(t *testing.T) {
	a := room.Generate()
	b := room.Generate()

	assert.Equal(t, a, b)

	a[0].GuestName = "changed"
	assert.Empty(t, b[0].GuestName, "each call must allocate a fresh set")
}

func TestSameLayout(t *testing.T) {
	type testCase struct {
		name  string
		rooms func() []room.Room
		want  bool
	}

	tests := []testCase{
		{
			name:  "Generated",
			rooms: room.Generate,
			want:  true,
		},
		{
			name: "OldNumbering",
			rooms: func() []room.Room {
				var rooms []room.Room
				for _, id := range []string{"101", "102", "103", "104", "105", "106"} {
					rooms = append(rooms, room.Room{ID: id})
				}
				return rooms
			},
			want: false,
		},
		{
			name: "MissingSentinel",
			rooms: func() []room.Room {
				rooms := room.Generate()
				rooms[0].ID = "G00"
				return rooms
			},
			want: false,
		},
		{
			name: "Truncated",
			rooms: func() []room.Room {
				return room.Generate()[:10]
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, room.SameLayout(tt.rooms()))
		})
	}
}

func TestRegistry_GetPut(t *testing.T) {
	reg := room.NewRegistry(room.Generate())

	r, err := reg.Get("105")
	require.NoError(t, err)
	assert.Equal(t, room.FloorFirst, r.Floor)

	_, err = reg.Get("999")
	assert.ErrorIs(t, err, room.ErrNotFound)

	r.GuestName = "Asha"
	r.Status = room.StatusOccupied
	require.NoError(t, reg.Put(r))

	got, err := reg.Get("105")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.GuestName)

	err = reg.Put(room.Room{ID: "999"})
	assert.ErrorIs(t, err, room.ErrNotFound)
	assert.Equal(t, 20, reg.Len())
}

func TestRegistry_RoomsIsACopy(t *testing.T) {
	reg := room.NewRegistry(room.Generate())

	rooms := reg.Rooms()
	rooms[0].GuestName = "mutated"

	got, err := reg.Get(rooms[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.GuestName)
}

func TestRoom_OccupyVacate(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r := room.Generate()[0]

	occupied := r.Occupy("Asha", decimal.NewFromInt(500), "E1", at)
	assert.Equal(t, room.StatusOccupied, occupied.Status)
	assert.Equal(t, "Asha", occupied.GuestName)
	assert.True(t, occupied.Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "E1", occupied.EntryNumber)
	require.NotNil(t, occupied.CheckInTime)
	assert.True(t, occupied.CheckInTime.Equal(at))
	assert.True(t, occupied.Valid())

	assert.Equal(t, room.StatusAvailable, r.Status, "Occupy must not modify the receiver")

	vacated := occupied.Vacate()
	assert.Equal(t, room.StatusAvailable, vacated.Status)
	assert.Empty(t, vacated.GuestName)
	assert.Empty(t, vacated.EntryNumber)
	assert.Nil(t, vacated.CheckInTime)
	assert.True(t, vacated.Price.IsZero())
	assert.True(t, vacated.Valid())
}

func TestRoom_Valid(t *testing.T) {
	at := time.Now()

	assert.False(t, room.Room{Status: room.StatusAvailable, GuestName: "Ghost"}.Valid())
	assert.False(t, room.Room{Status: room.StatusAvailable, CheckInTime: &at}.Valid())
	assert.False(t, room.Room{Status: room.StatusOccupied}.Valid())
	assert.True(t, room.Room{Status: room.StatusOccupied, GuestName: "Asha", CheckInTime: &at}.Valid())
}

func TestDateOf(t *testing.T) {
	// 23:30 local in a UTC-5 zone is already the next day in UTC.
	est := time.FixedZone("EST", -5*60*60)
	checkIn := time.Date(2024, 1, 1, 23, 30, 0, 0, est)

	assert.Equal(t, "2024-01-01", room.DateOf(checkIn, est))
	assert.Equal(t, "2024-01-02", room.DateOf(checkIn, time.UTC))
	assert.Equal(t, "2024-01-01", room.DateOf(checkIn.UTC(), est))
}

func TestSearchHistory(t *testing.T) {
	records := []room.HistoryRecord{
		{ID: uuid.New(), RoomNumber: "G01", GuestName: "Asha"},
		{ID: uuid.New(), RoomNumber: "101", GuestName: "Ravi"},
		{ID: uuid.New(), RoomNumber: "201", GuestName: "Ashok"},
	}

	type testCase struct {
		name  string
		query string
		want  []string
	}

	tests := []testCase{
		{name: "Empty", query: "", want: []string{"G01", "101", "201"}},
		{name: "GuestCaseInsensitive", query: "ASH", want: []string{"G01", "201"}},
		{name: "RoomNumber", query: "g0", want: []string{"G01"}},
		{name: "NoMatch", query: "zzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := room.SearchHistory(records, tt.query)

			var rooms []string
			for _, rec := range got {
				rooms = append(rooms, rec.RoomNumber)
			}

			assert.Equal(t, tt.want, rooms)
		})
	}
}
