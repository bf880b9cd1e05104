// Package children queries the relationship lookup service for the caller's
// currently registered children. Lookup errors degrade to an empty list so
// missing identifiers surface as validation failures, never transport faults.
package children

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"caredays/pkg/domain"
)

// Child is one registered child of the caller.
type Child struct {
	Name       string      `json:"navn,omitempty"`
	BirthDate  domain.Date `json:"fødselsdato"`
	ActorID    string      `json:"aktør_id"`
	NationalID string      `json:"identitetsnummer,omitempty"`
}

type lookupResponse struct {
	Children []Child `json:"barn"`
}

// Client queries the relationship lookup service over HTTP.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		logger: logger,
	}
}

var childAttributes = []string{
	"barn[].aktør_id", "barn[].fornavn", "barn[].mellomnavn",
	"barn[].etternavn", "barn[].fødselsdato", "barn[].identitetsnummer",
}

// CurrentChildren returns the caller's registered children. Any failure is
// logged and reported as an empty list.
func (c *Client) CurrentChildren(ctx context.Context, token, correlationID string) []Child {
	var body lookupResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Correlation-ID", correlationID).
		SetHeader("Accept", "application/json").
		SetQueryParamsFromValues(url.Values{"a": childAttributes}).
		SetResult(&body).
		Get("/meg")
	if err != nil {
		c.logger.WarnContext(ctx, "relationship lookup failed, continuing without registered children",
			"correlation_id", correlationID,
			"error", err,
		)
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.WarnContext(ctx, "relationship lookup returned unexpected status, continuing without registered children",
			"correlation_id", correlationID,
			"status", resp.StatusCode(),
		)
		return nil
	}
	return body.Children
}
