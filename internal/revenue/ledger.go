package revenue

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

// PaymentLister returns ledger entries whose payment date equals date.
type PaymentLister interface {
	ListPayments(ctx context.Context, date string) ([]room.Payment, error)
}

// Ledger sums the payments recorded on a date. Payment dates are normalized
// when written, so matching is plain equality.
type Ledger struct {
	payments PaymentLister
}

func NewLedger(payments PaymentLister) *Ledger {
	return &Ledger{payments: payments}
}

func (l *Ledger) Revenue(ctx context.Context, date string) (*Report, error) {
	payments, err := l.payments.ListPayments(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	records := make([]Record, 0, len(payments))

	for _, p := range payments {
		records = append(records, Record{
			Source:      OriginPayment,
			RoomNumber:  p.RoomNumber,
			GuestName:   p.GuestName,
			EntryNumber: p.EntryNumber,
			Price:       p.Amount,
		})
	}

	return newReport(date, records), nil
}
