package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/flip"
)

// Service is what the HTTP API needs from the clock.
type Service interface {
	Now() time.Time
	Slots() [flip.SlotCount]flip.Slot
	List() []alarm.Entry
	Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error)
	Remove(ctx context.Context, index int) (alarm.Entry, error)
	TestFire(ctx context.Context) alarm.Entry
}

// NewRouter builds the API handler. An empty origin list disables CORS headers.
func NewRouter(ctx context.Context, service Service, allowedOrigins []string) http.Handler {
	h := &handler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(ctx))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/clock", h.clock)
		r.Get("/alarms", h.listAlarms)
		r.Post("/alarms", h.addAlarm)
		r.Post("/alarms/test", h.testAlarm)
		r.Delete("/alarms/{index}", h.removeAlarm)
	})

	return r
}
