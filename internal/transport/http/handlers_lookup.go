package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"caredays/internal/applicant"
	"caredays/internal/children"
	"caredays/pkg/requestcontext"
)

// ApplicantResolver resolves the authenticated caller in the person registry.
type ApplicantResolver interface {
	Resolve(ctx context.Context, token, subject, correlationID string) (applicant.Applicant, error)
}

// ChildrenLookup returns the caller's registered children.
type ChildrenLookup interface {
	CurrentChildren(ctx context.Context, token, correlationID string) []children.Child
}

// LookupHandler serves the read-only endpoints the frontend uses to
// prefill a message.
type LookupHandler struct {
	applicants ApplicantResolver
	children   ChildrenLookup
	logger     *slog.Logger
}

func NewLookupHandler(applicants ApplicantResolver, childrenLookup ChildrenLookup, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{applicants: applicants, children: childrenLookup, logger: logger}
}

func (h *LookupHandler) Applicant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resolved, err := h.applicants.Resolve(ctx,
		requestcontext.IDToken(ctx),
		requestcontext.Subject(ctx),
		requestcontext.CorrelationID(ctx),
	)
	if err != nil {
		h.logger.WarnContext(ctx, "applicant lookup failed",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resolved)
}

func (h *LookupHandler) Children(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kids := h.children.CurrentChildren(ctx,
		requestcontext.IDToken(ctx),
		requestcontext.CorrelationID(ctx),
	)
	if kids == nil {
		kids = []children.Child{}
	}
	respondJSON(w, http.StatusOK, map[string][]children.Child{"barn": kids})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
