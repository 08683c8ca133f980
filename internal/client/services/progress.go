package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/dmitrijs2005/studysync/internal/logging"
)

// ProgressService caches the user's tracked kazanims together with the
// server-computed stats and recommendations.
type ProgressService struct {
	api  client.Client
	coll *collection[models.ProgressEntry]
	log  logging.Logger

	mu    sync.Mutex
	stats *models.ProgressStats
	recs  []models.Recommendation
}

func NewProgressService(api client.Client, tokens TokenSource, pageSize int, log logging.Logger) *ProgressService {
	if log == nil {
		log = logging.Nop()
	}
	return &ProgressService{
		api:  api,
		coll: newCollection(tokens, pageSize, func(e models.ProgressEntry) string { return e.KazanimCode }),
		log:  log.With("resource", "progress"),
	}
}

func (s *ProgressService) List(ctx context.Context, reset bool) error {
	err := s.coll.list(ctx, reset, s.api.ListProgress)
	if err != nil {
		s.log.Warn(ctx, "list failed", "reset", reset, "error", err)
	}
	return err
}

func (s *ProgressService) LoadMore(ctx context.Context) error {
	return s.List(ctx, false)
}

// Stats fetches and caches the progress summary.
func (s *ProgressService) Stats(ctx context.Context) (*models.ProgressStats, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}
	st, err := s.api.ProgressStats(actx)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("progress stats: %w", err))
	}

	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()

	out := *st
	return &out, nil
}

// CachedStats returns the last fetched summary, or nil.
func (s *ProgressService) CachedStats() *models.ProgressStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	out := *s.stats
	return &out
}

// Recommendations fetches and caches up to limit suggested kazanims.
func (s *ProgressService) Recommendations(ctx context.Context, limit int) ([]models.Recommendation, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}
	recs, err := s.api.Recommendations(actx, limit)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("recommendations: %w", err))
	}

	s.mu.Lock()
	s.recs = recs
	s.mu.Unlock()
	return append([]models.Recommendation(nil), recs...), nil
}

// CachedRecommendations returns the last fetched recommendations.
func (s *ProgressService) CachedRecommendations() []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Recommendation(nil), s.recs...)
}

// MutateStatus moves the cached entry forward to status before the backend
// confirms it; the change is kept if the request fails. Only understood is
// sent to the backend, with u as the understanding evidence. Moving an entry
// backwards is rejected with ErrValidation. Repeating understood is allowed
// and sends the request again.
func (s *ProgressService) MutateStatus(ctx context.Context, code string, status models.ProgressStatus, u models.Understanding) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", common.ErrValidation, status)
	}
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return s.coll.fail(err)
	}

	found, err := s.coll.update(code, func(e *models.ProgressEntry) error {
		if status.Rank() < e.Status.Rank() {
			return fmt.Errorf("%w: %s cannot go from %s back to %s", common.ErrValidation, code, e.Status, status)
		}
		e.Status = status
		if status == models.StatusUnderstood && u.Confidence > 0 {
			e.Confidence = u.Confidence
		}
		return nil
	})
	if !found {
		return common.ErrNotFound
	}
	if err != nil {
		return err
	}

	if status != models.StatusUnderstood {
		return nil
	}

	updated, err := s.api.MarkUnderstood(actx, code, u)
	if err != nil {
		s.log.Warn(ctx, "mark understood failed, cache keeps the new status", "kazanim", code, "error", err)
		return s.coll.fail(fmt.Errorf("mark %s understood: %w", code, err))
	}
	if updated != nil {
		_, _ = s.coll.update(code, func(e *models.ProgressEntry) error {
			merged := *updated
			if merged.Status.Rank() < e.Status.Rank() {
				merged.Status = e.Status
			}
			*e = merged
			return nil
		})
	}
	return nil
}

// CountByStatus counts cached entries per status.
func (s *ProgressService) CountByStatus() map[models.ProgressStatus]int {
	out := map[models.ProgressStatus]int{
		models.StatusTracked:    0,
		models.StatusInProgress: 0,
		models.StatusUnderstood: 0,
	}
	s.coll.each(func(e models.ProgressEntry) {
		out[e.Status]++
	})
	return out
}

// Find returns the cached entry for code.
func (s *ProgressService) Find(code string) (models.ProgressEntry, bool) {
	return s.coll.find(code)
}

func (s *ProgressService) Items() []models.ProgressEntry { return s.coll.snapshot() }
func (s *ProgressService) Cursor() models.Cursor         { return s.coll.getCursor() }
func (s *ProgressService) Loading() bool                 { return s.coll.isLoading() }
func (s *ProgressService) Err() error                    { return s.coll.err() }
func (s *ProgressService) Len() int                      { return s.coll.length() }

// Clear forgets everything cached, e.g. after sign-out.
func (s *ProgressService) Clear() {
	s.coll.clear()
	s.mu.Lock()
	s.stats, s.recs = nil, nil
	s.mu.Unlock()
}
