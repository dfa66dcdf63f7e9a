package localstore_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/roomboard/internal/booking/localstore"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

var at = time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC)

func openStore(t *testing.T) (*localstore.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "board.db")

	s, err := localstore.Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })

	return s, path
}

// seedRaw writes a document the way an older board would have left it.
func seedRaw(t *testing.T, path, key, value string) {
	t.Helper()

	s, err := localstore.Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, localstore.PutRaw(context.Background(), s, key, value))
}

func TestStore_EmptyReturnsDefaults(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, room.Generate(), rooms)

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	payments, err := s.ListPayments(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestStore_CheckInCheckOut(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	occupied := room.Generate()[0].Occupy("Asha", decimal.NewFromInt(500), "E1", at)
	payment := room.Payment{
		ID:          uuid.New(),
		RoomNumber:  "G01",
		GuestName:   "Asha",
		EntryNumber: "E1",
		Amount:      decimal.NewFromInt(500),
		PaymentDate: "2024-06-01",
		CreatedAt:   at,
	}

	require.NoError(t, s.CheckIn(ctx, occupied, payment))

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, room.GeneratedCount())
	assert.Equal(t, room.StatusOccupied, rooms[0].Status)
	assert.Equal(t, "Asha", rooms[0].GuestName)
	assert.True(t, rooms[0].Price.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, rooms[0].CheckInTime)
	assert.True(t, rooms[0].CheckInTime.Equal(at))

	payments, err := s.ListPayments(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.ID, payments[0].ID)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(500)))

	rec := room.HistoryRecord{
		ID:           uuid.New(),
		RoomNumber:   "G01",
		GuestName:    "Asha",
		Price:        decimal.NewFromInt(500),
		EntryNumber:  "E1",
		CheckInTime:  at,
		CheckOutTime: at.Add(20 * time.Hour),
	}

	require.NoError(t, s.CheckOut(ctx, occupied.Vacate(), rec))
	require.NoError(t, s.Close())

	// Reopen to prove the documents were written to disk.
	reopened, err := localstore.Open(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	rooms, err = reopened.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, room.StatusAvailable, rooms[0].Status)
	assert.True(t, rooms[0].Valid())

	history, err := reopened.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)
	assert.True(t, history[0].Price.Equal(decimal.NewFromInt(500)))
	assert.True(t, history[0].CheckOutTime.Equal(rec.CheckOutTime))
}

func TestStore_CheckOutPrependsHistory(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	for i, id := range []string{"101", "102"} {
		r := room.Room{ID: id, Number: id, Floor: room.FloorFirst, Status: room.StatusAvailable}
		rec := room.HistoryRecord{
			ID:           uuid.New(),
			RoomNumber:   id,
			CheckInTime:  at,
			CheckOutTime: at.Add(time.Duration(i+1) * time.Hour),
		}

		require.NoError(t, s.CheckOut(ctx, r, rec))
	}

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "102", history[0].RoomNumber)
	assert.Equal(t, "101", history[1].RoomNumber)
}

func TestStore_UnknownRoomRejected(t *testing.T) {
	s, _ := openStore(t)

	r := room.Room{ID: "301", Number: "301", Status: room.StatusAvailable}

	err := s.CheckOut(context.Background(), r, room.HistoryRecord{ID: uuid.New()})
	assert.ErrorIs(t, err, room.ErrNotFound)

	history, err := s.ListHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history, "failed check-out must not leave a history record")
}

func TestStore_ListPaymentsFiltersByDate(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-06-01", "2024-06-02", "2024-06-01"} {
		require.NoError(t, s.RecordPayment(ctx, room.Payment{
			ID:          uuid.New(),
			RoomNumber:  "G01",
			Amount:      decimal.NewFromInt(100),
			PaymentDate: date,
			CreatedAt:   at,
		}))
	}

	payments, err := s.ListPayments(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	payments, err = s.ListPayments(ctx, "2024-06-03")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestStore_LayoutGuard(t *testing.T) {
	type testCase struct {
		name  string
		saved string
		want  func(t *testing.T, rooms []room.Room)
	}

	tests := []testCase{
		{
			name:  "OldNumbering",
			saved: `[{"id":"101","number":"101","floor":"1st Floor","status":"occupied","guestName":"Old","price":300,"checkInTime":"2023-01-01T10:00:00Z"}]`,
			want: func(t *testing.T, rooms []room.Room) {
				assert.Equal(t, room.Generate(), rooms)
			},
		},
		{
			name:  "Malformed",
			saved: `{not json`,
			want: func(t *testing.T, rooms []room.Room) {
				assert.Equal(t, room.Generate(), rooms)
			},
		},
		{
			name:  "CurrentLayoutKept",
			saved: currentLayoutWithStringPrice(),
			want: func(t *testing.T, rooms []room.Room) {
				require.Len(t, rooms, room.GeneratedCount())
				assert.Equal(t, "Asha", rooms[0].GuestName)
				assert.True(t, rooms[0].Price.Equal(decimal.NewFromInt(450)), "price = %s", rooms[0].Price)
				assert.True(t, rooms[1].Price.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "board.db")
			seedRaw(t, path, localstore.KeyRooms, tt.saved)

			s, err := localstore.Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			defer s.Close()

			rooms, err := s.ListRooms(context.Background())
			require.NoError(t, err)
			tt.want(t, rooms)
		})
	}
}

func TestStore_LegacyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.db")
	seedRaw(t, path, localstore.KeyHistory,
		`[{"id":1717233300000,"roomNumber":"G02","guestName":"Ravi","price":"","checkInTime":"2024-06-01T09:00:00Z","checkOutTime":"2024-06-01T18:00:00Z"}]`)

	s, err := localstore.Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close()

	first, err := s.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].Price.IsZero())
	assert.Equal(t, "Ravi", first[0].GuestName)
	assert.NotEqual(t, uuid.Nil, first[0].ID)

	second, err := s.ListHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID, "legacy ids map to a stable uuid")
}

func currentLayoutWithStringPrice() string {
	rooms := room.Generate()

	out := "["

	for i, r := range rooms {
		if i > 0 {
			out += ","
		}

		switch r.ID {
		case "G01":
			out += `{"id":"G01","number":"G01","floor":"Ground Floor","status":"occupied","guestName":"Asha","price":"450","checkInTime":"2024-06-01T09:00:00Z"}`
		default:
			out += `{"id":"` + r.ID + `","number":"` + r.Number + `","floor":"` + string(r.Floor) + `","status":"available","guestName":"","price":"","checkInTime":null}`
		}
	}

	return out + "]"
}
