package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"caredays/internal/applicant"
	"caredays/internal/message"
	"caredays/internal/submission"
)

// ProblemDetails is the RFC 7807 error payload returned by every endpoint.
type ProblemDetails struct {
	Type              string              `json:"type"`
	Title             string              `json:"title"`
	Status            int                 `json:"status"`
	Detail            string              `json:"detail"`
	InvalidParameters []message.Violation `json:"invalid_parameters,omitempty"`
}

func problem(title string, status int, detail string) ProblemDetails {
	return ProblemDetails{Type: "/problem-details/" + title, Title: title, Status: status, Detail: detail}
}

var (
	problemInvalidBody = problem("invalid-request-body", http.StatusBadRequest,
		"Request body could not be parsed as a message.")
	problemAccessDenied = problem("access-denied", http.StatusUnavailableForLegalReasons,
		"The caller is not permitted to submit this message.")
	problemInternal = problem("internal-error", http.StatusInternalServerError,
		"The submission could not be processed. Try again later.")
	problemAttachmentsTooLarge = problem("attachments-too-large", http.StatusRequestEntityTooLarge,
		"Totale størrelsen på alle vedlegg overstiger maks på 24 MB.")
)

func respondProblem(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// respondError translates the submission error taxonomy to HTTP. Validation
// and access failures are client-correctable; everything else is an opaque
// 5xx with no retry hint beyond "try again later".
func respondError(w http.ResponseWriter, err error) {
	var validationErr *message.ValidationError
	if errors.As(err, &validationErr) {
		p := problem("invalid-request-parameters", http.StatusBadRequest,
			"Requesten inneholder ugyldige parametre.")
		p.InvalidParameters = validationErr.Violations
		respondProblem(w, p)
		return
	}

	var incompleteErr *message.AttachmentIncompleteError
	if errors.As(err, &incompleteErr) {
		if incompleteErr.TooLarge {
			respondProblem(w, problemAttachmentsTooLarge)
			return
		}
		p := problem("invalid-request-parameters", http.StatusBadRequest,
			"Requesten inneholder ugyldige parametre.")
		p.InvalidParameters = []message.Violation{{
			ParameterName: "vedlegg",
			ParameterType: "entity",
			Reason:        incompleteErr.Error(),
		}}
		respondProblem(w, p)
		return
	}

	if errors.Is(err, applicant.ErrAccessDenied) || errors.Is(err, submission.ErrApplicantUnderage) {
		respondProblem(w, problemAccessDenied)
		return
	}

	respondProblem(w, problemInternal)
}
