package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

type fakeState struct {
	rooms   []room.Room
	history []room.HistoryRecord
	err     error
}

func (f *fakeState) Rooms(context.Context) ([]room.Room, error) {
	return f.rooms, f.err
}

func (f *fakeState) History(context.Context) ([]room.HistoryRecord, error) {
	return f.history, f.err
}

type fakePayments struct {
	gotDate  string
	payments []room.Payment
	err      error
}

func (f *fakePayments) ListPayments(_ context.Context, date string) ([]room.Payment, error) {
	f.gotDate = date
	return f.payments, f.err
}

func occupiedRoom(id, guest string, price int64, at time.Time) room.Room {
	r := room.Room{ID: id, Number: id, Floor: room.FloorGround, Status: room.StatusAvailable}
	return r.Occupy(guest, decimal.NewFromInt(price), "E-"+id, at)
}

func TestCompute(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, -1)

	type args struct {
		date    string
		rooms   []room.Room
		history []room.HistoryRecord
	}

	type testCase struct {
		name        string
		args        args
		wantTotal   int64
		wantSources []revenue.Origin
		wantRooms   []string
	}

	tests := []testCase{
		{
			name: "NoMatches",
			args: args{
				date:  "2024-03-10",
				rooms: room.Generate(),
			},
			wantTotal:   0,
			wantSources: nil,
		},
		{
			name: "ActiveBeforeHistory",
			args: args{
				date:  "2024-03-10",
				rooms: []room.Room{occupiedRoom("G01", "Asha", 500, day)},
				history: []room.HistoryRecord{
					{ID: uuid.New(), RoomNumber: "101", GuestName: "Ravi", Price: decimal.NewFromInt(300), CheckInTime: day, CheckOutTime: day.Add(time.Hour)},
				},
			},
			wantTotal:   800,
			wantSources: []revenue.Origin{revenue.OriginActive, revenue.OriginHistory},
			wantRooms:   []string{"G01", "101"},
		},
		{
			name: "InputOrderPreserved",
			args: args{
				date: "2024-03-10",
				rooms: []room.Room{
					occupiedRoom("202", "B", 100, day),
					occupiedRoom("G03", "A", 100, day),
				},
				history: []room.HistoryRecord{
					{RoomNumber: "108", Price: decimal.NewFromInt(50), CheckInTime: day},
					{RoomNumber: "102", Price: decimal.NewFromInt(50), CheckInTime: day},
				},
			},
			wantTotal: 300,
			wantSources: []revenue.Origin{
				revenue.OriginActive, revenue.OriginActive, revenue.OriginHistory, revenue.OriginHistory,
			},
			wantRooms: []string{"202", "G03", "108", "102"},
		},
		{
			name: "OtherDatesIgnored",
			args: args{
				date:  "2024-03-10",
				rooms: []room.Room{occupiedRoom("G01", "Asha", 500, otherDay)},
				history: []room.HistoryRecord{
					{RoomNumber: "101", Price: decimal.NewFromInt(300), CheckInTime: otherDay},
					{RoomNumber: "102", Price: decimal.NewFromInt(200), CheckInTime: day},
				},
			},
			wantTotal:   200,
			wantSources: []revenue.Origin{revenue.OriginHistory},
			wantRooms:   []string{"102"},
		},
		{
			name: "MissingPriceCountsAsZero",
			args: args{
				date: "2024-03-10",
				history: []room.HistoryRecord{
					{RoomNumber: "101", CheckInTime: day},
					{RoomNumber: "102", Price: decimal.NewFromInt(250), CheckInTime: day},
				},
			},
			wantTotal:   250,
			wantSources: []revenue.Origin{revenue.OriginHistory, revenue.OriginHistory},
			wantRooms:   []string{"101", "102"},
		},
		{
			name: "AvailableRoomWithStaleTimeIgnored",
			args: args{
				date: "2024-03-10",
				rooms: []room.Room{
					{ID: "G02", Number: "G02", Status: room.StatusAvailable, CheckInTime: &day, Price: decimal.NewFromInt(900)},
				},
			},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := revenue.Compute(tt.args.date, tt.args.rooms, tt.args.history, time.UTC)

			require.NotNil(t, got.Records)
			assert.Equal(t, tt.args.date, got.Date)
			assert.True(t, got.Total.Equal(decimal.NewFromInt(tt.wantTotal)), "total = %s", got.Total)

			var sources []revenue.Origin

			var rooms []string

			for _, r := range got.Records {
				sources = append(sources, r.Source)
				rooms = append(rooms, r.RoomNumber)
			}

			assert.Equal(t, tt.wantSources, sources)
			assert.Equal(t, tt.wantRooms, rooms)
		})
	}
}

func TestCompute_EmptyReport(t *testing.T) {
	got := revenue.Compute("2030-01-01", nil, nil, time.UTC)

	assert.True(t, got.Total.IsZero())
	assert.Equal(t, []revenue.Record{}, got.Records)
}

func TestCompute_LocalDateNearMidnight(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	checkIn := time.Date(2024, 1, 1, 23, 30, 0, 0, est).UTC()

	rooms := []room.Room{occupiedRoom("G01", "Asha", 500, checkIn)}

	got := revenue.Compute("2024-01-01", rooms, nil, est)
	require.Len(t, got.Records, 1)
	assert.Equal(t, revenue.OriginActive, got.Records[0].Source)

	got = revenue.Compute("2024-01-02", rooms, nil, est)
	assert.Empty(t, got.Records)
}

func TestDerived_Revenue(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	state := &fakeState{
		rooms: []room.Room{occupiedRoom("G01", "Asha", 500, day)},
		history: []room.HistoryRecord{
			{RoomNumber: "101", GuestName: "Ravi", Price: decimal.NewFromInt(250), CheckInTime: day},
		},
	}

	got, err := revenue.NewDerived(state, time.UTC).Revenue(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "Asha", got.Records[0].GuestName)
	assert.Equal(t, "E-G01", got.Records[0].EntryNumber)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(750)))
}

func TestDerived_Revenue_StateError(t *testing.T) {
	state := &fakeState{err: errors.New("stopped")}

	_, err := revenue.NewDerived(state, time.UTC).Revenue(context.Background(), "2024-05-01")
	assert.Error(t, err)
}

func TestLedger_Revenue(t *testing.T) {
	type testCase struct {
		name      string
		lister    *fakePayments
		wantTotal int64
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "CheckInPlusDailyPayment",
			lister: &fakePayments{payments: []room.Payment{
				{RoomNumber: "G01", GuestName: "Asha", EntryNumber: "E1", Amount: decimal.NewFromInt(500), PaymentDate: "2024-05-01"},
				{RoomNumber: "G01", GuestName: "Asha", EntryNumber: "E1", Amount: decimal.NewFromInt(200), PaymentDate: "2024-05-01"},
			}},
			wantTotal: 700,
			wantLen:   2,
		},
		{
			name:      "NoPayments",
			lister:    &fakePayments{},
			wantTotal: 0,
			wantLen:   0,
		},
		{
			name:    "ListerError",
			lister:  &fakePayments{err: errors.New("db down")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := revenue.NewLedger(tt.lister).Revenue(context.Background(), "2024-05-01")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "2024-05-01", tt.lister.gotDate)
			assert.Len(t, got.Records, tt.wantLen)
			assert.NotNil(t, got.Records)
			assert.True(t, got.Total.Equal(decimal.NewFromInt(tt.wantTotal)))

			for _, r := range got.Records {
				assert.Equal(t, revenue.OriginPayment, r.Source)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := revenue.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = revenue.ParseDate("29-02-2024")
	assert.ErrorIs(t, err, revenue.ErrInvalidDate)

	_, err = revenue.ParseDate("")
	assert.ErrorIs(t, err, revenue.ErrInvalidDate)
}
