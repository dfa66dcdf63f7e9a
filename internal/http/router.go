package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/roomboard/internal/http/history"
	"github.com/MrJamesThe3rd/roomboard/internal/http/revenue"
	"github.com/MrJamesThe3rd/roomboard/internal/http/room"
)

func New(
	roomsV1 *room.Handler,
	historyV1 *history.Handler,
	revenueV1 *revenue.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			roomsV1.Routes(r)
		})

		r.Route("/history", historyV1.Routes)
		r.Route("/revenue", revenueV1.Routes)
	})

	return router
}
