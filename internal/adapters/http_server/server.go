package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotelos/internal/adapters/auth"
)

type Server struct{ mux *chi.Mux }

// New builds the router with the full middleware stack. Everything under
// /v1 additionally requires a session token (see MountHandlers).
func New(rps int) *Server {
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(RateLimit(rps))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// MountHandlers wires the front-desk API. The verifier guards every /v1
// route; /healthz stays open.
func (s *Server) MountHandlers(h *Handlers, v *auth.Verifier) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Auth(v))
		r.Post("/checkin", h.checkIn)
		r.Get("/stays/active", h.searchActiveStay)
		r.Post("/stays/{id}/checkout", h.checkOut)
		r.Get("/guests", h.guestLookup)
		r.Get("/rooms/available", h.availableRooms)
	})
}
