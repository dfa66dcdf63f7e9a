package revenue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/roomboard/internal/export"
	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
)

type Handler struct {
	src revenue.Source
	loc *time.Location
}

func NewHandler(src revenue.Source, loc *time.Location) *Handler {
	return &Handler{src: src, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Get("/export", h.export)
}

type recordResponse struct {
	Source      revenue.Origin  `json:"source"`
	RoomNumber  string          `json:"room_number"`
	GuestName   string          `json:"guest_name"`
	EntryNumber string          `json:"entry_number"`
	Price       decimal.Decimal `json:"price"`
}

type reportResponse struct {
	Date    string           `json:"date"`
	Total   decimal.Decimal  `json:"total"`
	Records []recordResponse `json:"records"`
}

func toResponse(rep *revenue.Report) reportResponse {
	resp := reportResponse{
		Date:    rep.Date,
		Total:   rep.Total,
		Records: make([]recordResponse, len(rep.Records)),
	}

	for i, rec := range rep.Records {
		resp.Records[i] = recordResponse(rec)
	}

	return resp
}

// report resolves ?date= (today in the board's time zone when absent) and computes it.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*revenue.Report, bool) {
	date := revenue.Today(h.loc)

	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := revenue.ParseDate(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}

		date = parsed
	}

	rep, err := h.src.Revenue(r.Context(), date)
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}

		slog.Error("failed to compute revenue", "date", date, "error", err)
		http.Error(w, "revenue unavailable", http.StatusBadGateway)

		return nil, false
	}

	return rep, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(rep)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}

	data, err := export.RevenueWorkbook(rep)
	if err != nil {
		slog.Error("failed to build revenue workbook", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="revenue-%s.xlsx"`, rep.Date))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}
