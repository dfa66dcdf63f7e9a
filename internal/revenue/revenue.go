package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Origin tags where a revenue record came from.
type Origin string

const (
	OriginActive  Origin = "Active"
	OriginHistory Origin = "History"
	OriginPayment Origin = "Payment"
)

// Record is one line of a revenue report.
type Record struct {
	Source      Origin
	RoomNumber  string
	GuestName   string
	EntryNumber string
	Price       decimal.Decimal
}

// Report is the revenue for one local calendar date. Records is never nil.
type Report struct {
	Date    string
	Total   decimal.Decimal
	Records []Record
}

// Source produces revenue reports. Deployments pick one implementation.
type Source interface {
	Revenue(ctx context.Context, date string) (*Report, error)
}

// ParseDate checks that s is a YYYY-MM-DD calendar date.
func ParseDate(s string) (string, error) {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return s, nil
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) string {
	return room.DateOf(time.Now(), loc)
}

func newReport(date string, records []Record) *Report {
	if records == nil {
		records = []Record{}
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Price)
	}

	return &Report{Date: date, Total: total, Records: records}
}
