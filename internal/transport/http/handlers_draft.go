package httptransport

import (
	"io"
	"log/slog"
	"net/http"

	"caredays/internal/draft"
	"caredays/pkg/requestcontext"
)

const maxDraftSize = 512 * 1024

// DraftHandler exposes the caller's in-progress message draft. A draft is an
// opaque blob as far as the server is concerned; it is stored and returned
// verbatim.
type DraftHandler struct {
	drafts *draft.Service
	logger *slog.Logger
}

func NewDraftHandler(drafts *draft.Service, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{drafts: drafts, logger: logger}
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	value, err := h.drafts.Get(ctx, requestcontext.Subject(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "draft read failed",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}
	if value == "" {
		value = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(value))
}

func (h *DraftHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDraftSize))
	if err != nil {
		respondProblem(w, problemInvalidBody)
		return
	}
	if err := h.drafts.Set(ctx, requestcontext.Subject(ctx), string(body)); err != nil {
		h.logger.ErrorContext(ctx, "draft write failed",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.drafts.Delete(ctx, requestcontext.Subject(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "draft delete failed",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
