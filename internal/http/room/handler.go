package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/booking"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

type Handler struct {
	mgr *booking.Manager
}

func NewHandler(mgr *booking.Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/reload", h.reload)
	r.Get("/{id}", h.get)
	r.Post("/{id}/check-in", h.checkIn)
	r.Post("/{id}/check-out", h.checkOut)
	r.Post("/{id}/payments", h.addPayment)
}

// writeError maps booking errors to status codes. Anything unrecognized is a failed
// write to the backing store, after which the board has already been reloaded.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		http.Error(w, "room not found", http.StatusNotFound)
	case errors.Is(err, room.ErrRoomOccupied), errors.Is(err, room.ErrRoomAvailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, room.ErrInvalidGuest), errors.Is(err, room.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrStopped), errors.Is(err, context.Canceled):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error("booking operation failed", "error", err)
		http.Error(w, "storage error, board reloaded", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.mgr.Rooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rooms))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.mgr.Room(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rm))
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	h.list(w, r)
}

type checkInRequest struct {
	GuestName   string          `json:"guest_name"`
	Price       decimal.Decimal `json:"price"`
	EntryNumber string          `json:"entry_number"`
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rm, err := h.mgr.CheckIn(r.Context(), chi.URLParam(r, "id"), booking.CheckInParams{
		GuestName:   req.GuestName,
		Price:       req.Price,
		EntryNumber: req.EntryNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rm))
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	rec, err := h.mgr.CheckOut(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(rec))
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.mgr.AddPayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}
