package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caredays/internal/platform/middleware"
)

// Handlers bundles the endpoint groups the router mounts.
type Handlers struct {
	Message    *MessageHandler
	Attachment *AttachmentHandler
	Draft      *DraftHandler
	Lookup     *LookupHandler
}

// NewRouter wires the public surface. Everything except /health and /metrics
// requires a valid bearer token; the resolved subject and the raw token travel
// in the request context from there on.
func NewRouter(h Handlers, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Correlation)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		r.Post("/melding/koronaoverforing", h.Message.SubmitCoronaTransfer)
		r.Post("/melding/overforing", h.Message.SubmitSpouseTransfer)
		r.Post("/melding/fordeling", h.Message.SubmitRedistribution)

		r.Get("/soker", h.Lookup.Applicant)
		r.Get("/barn", h.Lookup.Children)

		r.Post("/vedlegg", h.Attachment.Upload)
		r.Delete("/vedlegg/{vedleggId}", h.Attachment.Delete)
		r.Put("/vedlegg/{vedleggId}", h.Attachment.Persist)

		r.Post("/mellomlagring", h.Draft.Put)
		r.Put("/mellomlagring", h.Draft.Put)
		r.Get("/mellomlagring", h.Draft.Get)
		r.Delete("/mellomlagring", h.Draft.Delete)
	})

	return r
}
