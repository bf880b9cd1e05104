package httptransport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caredays/internal/attachment"
	"caredays/pkg/requestcontext"
)

const maxAttachmentSize = 8 * 1024 * 1024

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// AttachmentHandler exposes upload, delete and persist of single
// attachments, outside the submission pipeline.
type AttachmentHandler struct {
	attachments *attachment.Service
	logger      *slog.Logger
}

func NewAttachmentHandler(attachments *attachment.Service, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, logger: logger}
}

// Upload accepts one multipart file part named "vedlegg" and stores it.
// The stored attachment's URL is returned in the Location header.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		respondProblem(w, problem("attachment-not-attached", http.StatusBadRequest,
			"Requesten må inneholde et vedlegg."))
		return
	}
	file, header, err := r.FormFile("vedlegg")
	if err != nil {
		respondProblem(w, problem("attachment-not-attached", http.StatusBadRequest,
			"Requesten må inneholde et vedlegg."))
		return
	}
	defer file.Close()

	if header.Size > maxAttachmentSize {
		respondProblem(w, problem("attachment-too-large", http.StatusRequestEntityTooLarge,
			"Vedlegget overstiger maks på 8 MB."))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedContentTypes[contentType]; !ok {
		respondProblem(w, problem("attachment-content-type-not-supported", http.StatusBadRequest,
			"Vedlegg av typen "+contentType+" støttes ikke."))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize))
	if err != nil {
		respondProblem(w, problemInternal)
		return
	}

	id, err := h.attachments.Save(ctx, attachment.Attachment{
		Content:     content,
		ContentType: contentType,
		Title:       header.Filename,
		Owner:       &attachment.Owner{NationalID: requestcontext.Subject(ctx)},
	}, requestcontext.IDToken(ctx), requestcontext.CorrelationID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "attachment upload failed",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+string(id))
	w.Header().Set("Access-Control-Expose-Headers", "Location")
	w.WriteHeader(http.StatusCreated)
}

// Delete removes a previously uploaded attachment owned by the caller.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := attachment.ID(chi.URLParam(r, "vedleggId"))
	owner := attachment.Owner{NationalID: requestcontext.Subject(ctx)}

	if err := h.attachments.Remove(ctx, id, requestcontext.IDToken(ctx), requestcontext.CorrelationID(ctx), owner); err != nil {
		h.logger.ErrorContext(ctx, "attachment delete failed",
			"attachment_id", string(id),
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Persist marks one attachment as retained so the store will not expire it.
func (h *AttachmentHandler) Persist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := attachment.ID(chi.URLParam(r, "vedleggId"))
	owner := attachment.Owner{NationalID: requestcontext.Subject(ctx)}

	if err := h.attachments.Retain(ctx, id, requestcontext.IDToken(ctx), requestcontext.CorrelationID(ctx), owner); err != nil {
		h.logger.ErrorContext(ctx, "attachment persist failed",
			"attachment_id", string(id),
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
