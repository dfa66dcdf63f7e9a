package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

type roomResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Floor       room.Floor      `json:"floor"`
	Status      room.Status     `json:"status"`
	GuestName   string          `json:"guest_name"`
	Price       decimal.Decimal `json:"price"`
	EntryNumber string          `json:"entry_number,omitempty"`
	CheckInTime *time.Time      `json:"check_in_time"`
}

func toResponse(r room.Room) roomResponse {
	return roomResponse{
		ID:          r.ID,
		Number:      r.Number,
		Floor:       r.Floor,
		Status:      r.Status,
		GuestName:   r.GuestName,
		Price:       r.Price,
		EntryNumber: r.EntryNumber,
		CheckInTime: r.CheckInTime,
	}
}

func toResponseList(rooms []room.Room) []roomResponse {
	resp := make([]roomResponse, len(rooms))
	for i, r := range rooms {
		resp[i] = toResponse(r)
	}

	return resp
}

type historyResponse struct {
	ID           uuid.UUID       `json:"id"`
	RoomNumber   string          `json:"room_number"`
	GuestName    string          `json:"guest_name"`
	Price        decimal.Decimal `json:"price"`
	EntryNumber  string          `json:"entry_number,omitempty"`
	CheckInTime  time.Time       `json:"check_in_time"`
	CheckOutTime time.Time       `json:"check_out_time"`
}

func toHistoryResponse(rec room.HistoryRecord) historyResponse {
	return historyResponse(rec)
}

type paymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	RoomNumber  string          `json:"room_number"`
	GuestName   string          `json:"guest_name"`
	EntryNumber string          `json:"entry_number,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toPaymentResponse(p room.Payment) paymentResponse {
	return paymentResponse(p)
}
