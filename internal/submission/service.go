// Package submission orchestrates the pipeline that turns an untrusted
// message into a durably published record: enrichment, validation, applicant
// resolution, attachment retention, record composition, and publish. A
// compensating delete runs when the publish fails after retention.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"caredays/internal/applicant"
	"caredays/internal/attachment"
	"caredays/internal/children"
	"caredays/internal/message"
	"caredays/internal/platform/metrics"
	"caredays/internal/publisher"
)

// Identity is the authenticated caller of one submission.
type Identity struct {
	Token         string
	Subject       string
	CorrelationID string
	RequestID     string
}

// ApplicantResolver resolves the caller against the identity lookup.
type ApplicantResolver interface {
	Resolve(ctx context.Context, token, subject, correlationID string) (applicant.Applicant, error)
}

// ChildrenLookup returns the caller's registered children; it never fails,
// degrading to an empty list instead.
type ChildrenLookup interface {
	CurrentChildren(ctx context.Context, token, correlationID string) []children.Child
}

// Attachments is the fan-out surface over the remote attachment store.
type Attachments interface {
	FetchAll(ctx context.Context, refs []string, token, correlationID string, owner attachment.Owner) []attachment.Attachment
	RetainAll(ctx context.Context, refs []string, token, correlationID string, owner attachment.Owner) ([]attachment.ID, error)
	DeleteAll(ctx context.Context, ids []attachment.ID, token, correlationID string, owner attachment.Owner) error
}

// LogPublisher appends a completed record to the durable log.
type LogPublisher interface {
	Publish(ctx context.Context, record message.CompletedRecord, meta publisher.Metadata) (int64, error)
}

// Service sequences one submission end to end.
type Service struct {
	applicants  ApplicantResolver
	children    ChildrenLookup
	attachments Attachments
	log         LogPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Option func(*Service)

// WithMetrics attaches prometheus metrics to the pipeline.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the record timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	applicants ApplicantResolver,
	childrenLookup ChildrenLookup,
	attachments Attachments,
	log LogPublisher,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if applicants == nil || childrenLookup == nil || attachments == nil || log == nil {
		return nil, fmt.Errorf("all submission collaborators are required")
	}
	s := &Service{
		applicants:  applicants,
		children:    childrenLookup,
		attachments: attachments,
		log:         log,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle runs the submission pipeline. It returns nil exactly when the
// record has been acknowledged by the durable log. Failures before retention
// leave no side effects; a publish failure after retention triggers a
// best-effort compensating delete and always surfaces SubmissionFailedError.
func (s *Service) Handle(ctx context.Context, msg message.Message, id Identity) error {
	s.logStatus(ctx, msg.SubmissionID, "received")

	enriched := message.Enrich(msg, s.registeredChildren(ctx, id))

	if err := message.Validate(enriched); err != nil {
		s.reject("validation")
		return err
	}
	s.logStatus(ctx, msg.SubmissionID, "validated")

	resolved, err := s.applicants.Resolve(ctx, id.Token, id.Subject, id.CorrelationID)
	if err != nil {
		s.reject("applicant_lookup")
		return fmt.Errorf("resolve applicant: %w", err)
	}
	if !resolved.IsOfLegalAge(s.now()) {
		s.reject("underage")
		return ErrApplicantUnderage
	}

	owner := attachment.Owner{NationalID: resolved.NationalID}
	refs := enriched.CustodyAgreementRefs()

	if len(refs) > 0 {
		fetched := s.attachments.FetchAll(ctx, refs, id.Token, id.CorrelationID, owner)
		totalSize := 0
		for _, att := range fetched {
			totalSize += len(att.Content)
		}
		if err := message.ValidateCustodyAgreements(len(refs), len(fetched), totalSize); err != nil {
			s.reject("attachments_incomplete")
			return err
		}
	}

	var retained []attachment.ID
	if len(refs) > 0 {
		retained, err = s.attachments.RetainAll(ctx, refs, id.Token, id.CorrelationID, owner)
		if err != nil {
			s.reject("attachment_retention")
			return fmt.Errorf("retain attachments: %w", err)
		}
		s.logStatus(ctx, msg.SubmissionID, "attachments retained")
	}

	record := enriched.Complete(resolved, s.now(), idsToStrings(retained))

	meta := publisher.Metadata{
		CorrelationID: id.CorrelationID,
		RequestID:     id.RequestID,
		Version:       publisher.SupportedVersion,
	}
	publishStart := s.now()
	if _, err := s.log.Publish(ctx, record, meta); err != nil {
		s.compensate(ctx, msg.SubmissionID, retained, id, owner)
		if s.metrics != nil {
			s.metrics.SubmissionsFailed.Inc()
		}
		return &SubmissionFailedError{SubmissionID: msg.SubmissionID, Cause: err}
	}
	if s.metrics != nil {
		s.metrics.ObservePublish(s.now().Sub(publishStart))
		s.metrics.SubmissionsPublished.WithLabelValues(string(msg.Type)).Inc()
	}
	s.logStatus(ctx, msg.SubmissionID, "published")
	return nil
}

// registeredChildren maps the lookup result into enrichment pairs.
func (s *Service) registeredChildren(ctx context.Context, id Identity) []message.ChildIdentity {
	current := s.children.CurrentChildren(ctx, id.Token, id.CorrelationID)
	pairs := make([]message.ChildIdentity, 0, len(current))
	for _, child := range current {
		pairs = append(pairs, message.ChildIdentity{
			ActorID:    child.ActorID,
			NationalID: child.NationalID,
		})
	}
	return pairs
}

// compensate deletes every retained attachment after a failed publish. Its
// own failure is logged with enough context for manual reconciliation and
// never masks the publish error.
func (s *Service) compensate(ctx context.Context, submissionID string, retained []attachment.ID, id Identity, owner attachment.Owner) {
	if len(retained) == 0 {
		return
	}
	if err := s.attachments.DeleteAll(ctx, retained, id.Token, id.CorrelationID, owner); err != nil {
		if s.metrics != nil {
			s.metrics.CompensationFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "compensating attachment delete failed, manual reconciliation needed",
			"submission_id", submissionID,
			"attachment_ids", idsToStrings(retained),
			"correlation_id", id.CorrelationID,
			"error", err,
		)
		return
	}
	s.logStatus(ctx, submissionID, "retained attachments deleted after failed publish")
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.SubmissionsRejected.WithLabelValues(reason).Inc()
	}
}

// logStatus keeps pipeline progress logs on one grep-friendly format.
func (s *Service) logStatus(ctx context.Context, submissionID, status string) {
	s.logger.InfoContext(ctx, fmt.Sprintf("submission %s %s", submissionID, status),
		"submission_id", submissionID,
	)
}

func idsToStrings(ids []attachment.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
