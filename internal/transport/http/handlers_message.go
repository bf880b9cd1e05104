package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"caredays/internal/message"
	"caredays/internal/submission"
	"caredays/pkg/requestcontext"
)

// Submitter runs the submission pipeline for one message.
type Submitter interface {
	Handle(ctx context.Context, msg message.Message, id submission.Identity) error
}

// MessageHandler exposes the three submit endpoints. Each endpoint accepts
// only its own message variant; the payload for the variant must be present
// before any processing starts.
type MessageHandler struct {
	submitter Submitter
	logger    *slog.Logger
}

func NewMessageHandler(submitter Submitter, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{submitter: submitter, logger: logger}
}

func (h *MessageHandler) SubmitCoronaTransfer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, message.TypeCoronaTransfer,
		"Dette endepunktet krever en koronaoverføringsmelding")
}

func (h *MessageHandler) SubmitSpouseTransfer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, message.TypeSpouseTransfer,
		"Dette endepunktet krever en overføringsmelding")
}

func (h *MessageHandler) SubmitRedistribution(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, message.TypeRedistribution,
		"Dette endepunktet krever en fordelingsmelding")
}

func (h *MessageHandler) submit(w http.ResponseWriter, r *http.Request, requires message.Type, mismatchDetail string) {
	ctx := r.Context()

	var msg message.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.logger.WarnContext(ctx, "could not decode message body",
			"correlation_id", requestcontext.CorrelationID(ctx),
			"error", err,
		)
		respondProblem(w, problemInvalidBody)
		return
	}
	if !payloadPresent(msg, requires) {
		respondProblem(w, problem("feil-melding-på-endepunkt", http.StatusBadRequest, mismatchDetail))
		return
	}
	msg.Type = requires
	if msg.SubmissionID == "" {
		msg.SubmissionID = uuid.NewString()
	}

	id := submission.Identity{
		Token:         requestcontext.IDToken(ctx),
		Subject:       requestcontext.Subject(ctx),
		CorrelationID: requestcontext.CorrelationID(ctx),
		RequestID:     requestcontext.RequestID(ctx),
	}
	if err := h.submitter.Handle(ctx, msg, id); err != nil {
		h.logger.WarnContext(ctx, "submission not accepted",
			"submission_id", msg.SubmissionID,
			"correlation_id", id.CorrelationID,
			"error", err,
		)
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func payloadPresent(msg message.Message, t message.Type) bool {
	switch t {
	case message.TypeCoronaTransfer:
		return msg.Corona != nil
	case message.TypeSpouseTransfer:
		return msg.SpouseTransfer != nil
	case message.TypeRedistribution:
		return msg.Redistribution != nil
	default:
		return false
	}
}
