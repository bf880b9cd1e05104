package attachment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrNotRetrievable signals that the remote store did not return the
	// attachment after all retry attempts.
	ErrNotRetrievable = errors.New("attachment not retrievable")
	// ErrRetentionFailed signals that marking an attachment as permanently
	// retained did not succeed.
	ErrRetentionFailed = errors.New("attachment retention failed")
)

// RetryPolicy bounds the exponential backoff applied around each transport
// call. Retries never re-run local logic, only the remote call.
type RetryPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxAttempts  uint64
}

// DefaultRetryPolicy matches the store's established client behavior.
var DefaultRetryPolicy = RetryPolicy{
	InitialDelay: 200 * time.Millisecond,
	Multiplier:   2.0,
	MaxAttempts:  4,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxAttempts-1), ctx)
}

// Client is the attachment store client. All operations are idempotent at
// the protocol level, carry the caller's bearer token, a correlation id, and
// the owner claim the remote store authorizes against.
type Client struct {
	http   *resty.Client
	retry  RetryPolicy
	logger *slog.Logger
}

// NewClient builds a store client against baseURL.
func NewClient(baseURL string, timeout time.Duration, retry RetryPolicy, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAllowGetMethodPayload(true),
		retry:  retry,
		logger: logger,
	}
}

type storedResponse struct {
	ID string `json:"id"`
}

// Store uploads a new attachment and returns the id assigned by the store.
func (c *Client) Store(ctx context.Context, att Attachment, token, correlationID string) (ID, error) {
	var created storedResponse
	err := c.withRetry(ctx, "store-attachment", func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Correlation-ID", correlationID).
			SetHeader("Content-Type", "application/json").
			SetBody(att).
			SetResult(&created).
			Post("/")
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusCreated {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}
	return ID(created.ID), nil
}

// Fetch retrieves an attachment; the remote store refuses mismatched owners.
func (c *Client) Fetch(ctx context.Context, id ID, token, correlationID string, owner Owner) (*Attachment, error) {
	var att Attachment
	err := c.withRetry(ctx, "fetch-attachment", func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Correlation-ID", correlationID).
			SetHeader("Content-Type", "application/json").
			SetBody(owner).
			SetResult(&att).
			Get("/" + string(id))
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNotRetrievable, id, err)
	}
	return &att, nil
}

// Retain marks a previously stored attachment as permanently retained.
func (c *Client) Retain(ctx context.Context, id ID, token, correlationID string, owner Owner) error {
	err := c.withRetry(ctx, "retain-attachment", func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Correlation-ID", correlationID).
			SetHeader("Content-Type", "application/json").
			SetBody(owner).
			Put("/" + string(id) + "/persister")
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusNoContent {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrRetentionFailed, id, err)
	}
	return nil
}

// Delete removes an attachment. Used both for user-initiated deletion and
// for compensation after a failed publish.
func (c *Client) Delete(ctx context.Context, id ID, token, correlationID string, owner Owner) error {
	err := c.withRetry(ctx, "delete-attachment", func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Correlation-ID", correlationID).
			SetHeader("Content-Type", "application/json").
			SetBody(owner).
			Delete("/" + string(id))
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusNoContent {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, err)
	}
	return nil
}

// withRetry runs op under the client's retry policy, logging each failed
// attempt. Only the remote call is retried.
func (c *Client) withRetry(ctx context.Context, operation string, op func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err != nil {
			c.logger.WarnContext(ctx, "attachment store call failed",
				"operation", operation,
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	}, c.retry.backOff(ctx))
}
