package applicant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"caredays/pkg/domain"
)

// ErrAccessDenied signals that the lookup service refused to disclose the
// caller's identity. Distinct from transport faults and from not-found.
var ErrAccessDenied = errors.New("identity lookup denied access")

// lookupResponse mirrors the identity lookup service's /meg payload.
type lookupResponse struct {
	ActorID    string      `json:"aktør_id"`
	BirthDate  domain.Date `json:"fødselsdato"`
	FirstName  string      `json:"fornavn"`
	MiddleName *string     `json:"mellomnavn"`
	LastName   string      `json:"etternavn"`
}

// Client queries the identity lookup service over HTTP.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds a lookup client against baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		logger: logger,
	}
}

// attributes requested from the lookup service; the national identifier comes
// from the caller's token subject, not from the lookup.
var applicantAttributes = []string{
	"aktør_id", "fødselsdato", "fornavn", "mellomnavn", "etternavn",
}

// Resolve fetches the caller's registered identity. The subject is the
// national identifier asserted by the caller's token.
func (c *Client) Resolve(ctx context.Context, token, subject, correlationID string) (Applicant, error) {
	var body lookupResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Correlation-ID", correlationID).
		SetHeader("Accept", "application/json").
		SetQueryParamsFromValues(url.Values{"a": applicantAttributes}).
		SetResult(&body).
		Get("/meg")
	if err != nil {
		return Applicant{}, fmt.Errorf("identity lookup: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnavailableForLegalReasons:
		return Applicant{}, ErrAccessDenied
	default:
		return Applicant{}, fmt.Errorf("identity lookup: unexpected status %d", resp.StatusCode())
	}

	return Applicant{
		ActorID:    body.ActorID,
		NationalID: subject,
		BirthDate:  body.BirthDate,
		FirstName:  body.FirstName,
		MiddleName: body.MiddleName,
		LastName:   body.LastName,
	}, nil
}
