package attachment

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Store is the client surface the fan-out service depends on.
type Store interface {
	Store(ctx context.Context, att Attachment, token, correlationID string) (ID, error)
	Fetch(ctx context.Context, id ID, token, correlationID string, owner Owner) (*Attachment, error)
	Retain(ctx context.Context, id ID, token, correlationID string, owner Owner) error
	Delete(ctx context.Context, id ID, token, correlationID string, owner Owner) error
}

// Service fans attachment operations out concurrently, one unit of work per
// reference, and joins them all before returning. It adds no retry of its
// own; retry lives in the client.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save uploads one attachment.
func (s *Service) Save(ctx context.Context, att Attachment, token, correlationID string) (ID, error) {
	return s.store.Store(ctx, att, token, correlationID)
}

// Remove deletes one attachment.
func (s *Service) Remove(ctx context.Context, id ID, token, correlationID string, owner Owner) error {
	return s.store.Delete(ctx, id, token, correlationID, owner)
}

// Retain marks one attachment as permanently retained.
func (s *Service) Retain(ctx context.Context, id ID, token, correlationID string, owner Owner) error {
	return s.store.Retain(ctx, id, token, correlationID, owner)
}

// FetchAll retrieves the attachments behind refs concurrently. Fetch
// failures after retry are treated as missing, not fatal: the result simply
// shrinks, and the caller enforces the completeness invariant.
func (s *Service) FetchAll(ctx context.Context, refs []string, token, correlationID string, owner Owner) []Attachment {
	results := make([]*Attachment, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			att, err := s.store.Fetch(ctx, IDFromRef(ref), token, correlationID, owner)
			if err != nil {
				s.logger.WarnContext(ctx, "attachment missing from store",
					"attachment_id", string(IDFromRef(ref)),
					"correlation_id", correlationID,
					"error", err,
				)
				return
			}
			results[i] = att
		}()
	}
	wg.Wait()

	fetched := make([]Attachment, 0, len(refs))
	for _, att := range results {
		if att != nil {
			fetched = append(fetched, *att)
		}
	}
	return fetched
}

// RetainAll marks every referenced attachment as retained, concurrently. All
// units run to completion; the first failure is reported after the join.
func (s *Service) RetainAll(ctx context.Context, refs []string, token, correlationID string, owner Owner) ([]ID, error) {
	ids := make([]ID, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		id := IDFromRef(ref)
		ids[i] = id
		g.Go(func() error {
			return s.store.Retain(ctx, id, token, correlationID, owner)
		})
	}
	if err := g.Wait(); err != nil {
		return ids, err
	}
	return ids, nil
}

// DeleteAll deletes every attachment, concurrently. All units run to
// completion; the first failure is reported after the join.
func (s *Service) DeleteAll(ctx context.Context, ids []ID, token, correlationID string, owner Owner) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			return s.store.Delete(ctx, id, token, correlationID, owner)
		})
	}
	return g.Wait()
}
