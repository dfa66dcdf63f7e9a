package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

// Channel is the notification channel the rooms_notify trigger publishes to.
const Channel = "rooms_changes"

// Feed streams room rows changed by any client through postgres LISTEN/NOTIFY.
// It holds its own connection because a listening session cannot be pooled.
type Feed struct {
	connStr string
	logger  *slog.Logger
}

func NewFeed(connStr string, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{connStr: connStr, logger: logger}
}

func (f *Feed) Listen(ctx context.Context, apply func(room.Room)) error {
	conn, err := pgx.Connect(ctx, f.connStr)
	if err != nil {
		return fmt.Errorf("connecting feed: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listening on %s: %w", Channel, err)
	}

	f.logger.Info("room feed listening", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		r, err := decodeRoomChange([]byte(n.Payload))
		if err != nil {
			f.logger.Warn("dropping malformed room change", "error", err)
			continue
		}

		apply(r)
	}
}

// roomChange is the row_to_json shape of a rooms row.
type roomChange struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	Floor       string              `json:"floor"`
	Status      string              `json:"status"`
	GuestName   *string             `json:"guest_name"`
	Price       decimal.NullDecimal `json:"price"`
	EntryNumber *string             `json:"entry_number"`
	CheckInTime *time.Time          `json:"check_in_time"`
}

func decodeRoomChange(payload []byte) (room.Room, error) {
	var c roomChange
	if err := json.Unmarshal(payload, &c); err != nil {
		return room.Room{}, fmt.Errorf("decoding room change: %w", err)
	}

	if c.ID == "" {
		return room.Room{}, fmt.Errorf("decoding room change: missing id")
	}

	r := room.Room{
		ID:          c.ID,
		Number:      c.Number,
		Floor:       room.Floor(c.Floor),
		Status:      room.Status(c.Status),
		Price:       c.Price.Decimal,
		CheckInTime: c.CheckInTime,
	}

	if c.GuestName != nil {
		r.GuestName = *c.GuestName
	}

	if c.EntryNumber != nil {
		r.EntryNumber = *c.EntryNumber
	}

	return r, nil
}
