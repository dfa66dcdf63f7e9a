package history

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/booking"
	"github.com/MrJamesThe3rd/roomboard/internal/export"
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
	r.Get("/export", h.export)
}

type recordResponse struct {
	ID           uuid.UUID       `json:"id"`
	RoomNumber   string          `json:"room_number"`
	GuestName    string          `json:"guest_name"`
	Price        decimal.Decimal `json:"price"`
	EntryNumber  string          `json:"entry_number,omitempty"`
	CheckInTime  time.Time       `json:"check_in_time"`
	CheckOutTime time.Time       `json:"check_out_time"`
}

// list returns completed stays newest first, optionally filtered by ?q= on guest name
// or room number.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	history, err := h.mgr.History(r.Context())
	if err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	matched := room.SearchHistory(history, r.URL.Query().Get("q"))

	resp := make([]recordResponse, len(matched))
	for i, rec := range matched {
		resp[i] = recordResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	history, err := h.mgr.History(r.Context())
	if err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	data, err := export.HistoryWorkbook(room.SearchHistory(history, r.URL.Query().Get("q")), h.mgr.Location())
	if err != nil {
		slog.Error("failed to build history workbook", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}
