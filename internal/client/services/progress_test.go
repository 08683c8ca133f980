package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgress(t *testing.T, entries ...models.ProgressEntry) (*ProgressService, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	api.listProgress = func(ctx context.Context, p models.PageRequest) (*models.Page[models.ProgressEntry], error) {
		return &models.Page[models.ProgressEntry]{Items: entries, Total: len(entries)}, nil
	}
	s := NewProgressService(api, &staticTokens{token: "tok"}, 50, nil)
	require.NoError(t, s.List(context.Background(), true))
	return s, api
}

func entry(code string, st models.ProgressStatus) models.ProgressEntry {
	return models.ProgressEntry{KazanimCode: code, Description: "kazanim " + code, Status: st, Confidence: 0.2}
}

func TestProgress_UnderstoodIsIdempotent(t *testing.T) {
	s, api := newProgress(t, entry("M.8.1.1", models.StatusTracked))
	ctx := context.Background()
	u := models.Understanding{Confidence: 0.85, Signals: []string{"explained_back"}}

	require.NoError(t, s.MutateStatus(ctx, "M.8.1.1", models.StatusUnderstood, u))
	require.NoError(t, s.MutateStatus(ctx, "M.8.1.1", models.StatusUnderstood, u))

	e, ok := s.Find("M.8.1.1")
	require.True(t, ok)
	assert.Equal(t, models.StatusUnderstood, e.Status)
	assert.Equal(t, 0.85, e.Confidence)
	assert.Equal(t, []string{"M.8.1.1", "M.8.1.1"}, api.puts())
}

func TestProgress_NoRegression(t *testing.T) {
	s, api := newProgress(t, entry("F.7.1", models.StatusUnderstood), entry("F.7.2", models.StatusInProgress))
	ctx := context.Background()

	err := s.MutateStatus(ctx, "F.7.1", models.StatusInProgress, models.Understanding{})
	require.ErrorIs(t, err, common.ErrValidation)
	err = s.MutateStatus(ctx, "F.7.2", models.StatusTracked, models.Understanding{})
	require.ErrorIs(t, err, common.ErrValidation)

	e, _ := s.Find("F.7.1")
	assert.Equal(t, models.StatusUnderstood, e.Status)
	e, _ = s.Find("F.7.2")
	assert.Equal(t, models.StatusInProgress, e.Status)
	assert.Empty(t, api.puts())
}

func TestProgress_InProgressIsLocalOnly(t *testing.T) {
	s, api := newProgress(t, entry("T.5.1", models.StatusTracked))
	calls := api.calls.Load()

	require.NoError(t, s.MutateStatus(context.Background(), "T.5.1", models.StatusInProgress, models.Understanding{}))
	e, _ := s.Find("T.5.1")
	assert.Equal(t, models.StatusInProgress, e.Status)
	assert.Equal(t, calls, api.calls.Load())
}

func TestProgress_FailedUnderstoodKeepsOptimisticStatus(t *testing.T) {
	s, api := newProgress(t, entry("M.8.2", models.StatusInProgress))
	api.markUnderstood = func(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error) {
		return nil, client.NewAPIError(503, "")
	}

	err := s.MutateStatus(context.Background(), "M.8.2", models.StatusUnderstood, models.Understanding{Confidence: 0.7})
	require.ErrorIs(t, err, common.ErrServer)
	require.ErrorIs(t, s.Err(), common.ErrServer)

	e, _ := s.Find("M.8.2")
	assert.Equal(t, models.StatusUnderstood, e.Status)
}

func TestProgress_ServerEntryIsMergedWithoutRegression(t *testing.T) {
	s, api := newProgress(t, entry("M.8.3", models.StatusTracked))
	api.markUnderstood = func(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error) {
		return &models.ProgressEntry{KazanimCode: code, Description: "server text", Status: models.StatusInProgress, Confidence: 0.9}, nil
	}

	require.NoError(t, s.MutateStatus(context.Background(), "M.8.3", models.StatusUnderstood, models.Understanding{Confidence: 0.9}))
	e, _ := s.Find("M.8.3")
	assert.Equal(t, models.StatusUnderstood, e.Status)
	assert.Equal(t, "server text", e.Description)
}

func TestProgress_MutateStatusErrors(t *testing.T) {
	s, api := newProgress(t, entry("A", models.StatusTracked))
	ctx := context.Background()
	calls := api.calls.Load()

	require.ErrorIs(t, s.MutateStatus(ctx, "missing", models.StatusUnderstood, models.Understanding{}), common.ErrNotFound)
	require.ErrorIs(t, s.MutateStatus(ctx, "A", "forgotten", models.Understanding{}), common.ErrValidation)
	assert.Equal(t, calls, api.calls.Load())

	noTok := NewProgressService(api, &staticTokens{}, 10, nil)
	require.ErrorIs(t, noTok.MutateStatus(ctx, "A", models.StatusUnderstood, models.Understanding{}), common.ErrUnauthenticated)
	assert.Equal(t, calls, api.calls.Load())
}

func TestProgress_CountByStatus(t *testing.T) {
	s, _ := newProgress(t,
		entry("a", models.StatusTracked),
		entry("b", models.StatusTracked),
		entry("c", models.StatusInProgress),
		entry("d", models.StatusUnderstood),
	)

	assert.Equal(t, map[models.ProgressStatus]int{
		models.StatusTracked:    2,
		models.StatusInProgress: 1,
		models.StatusUnderstood: 1,
	}, s.CountByStatus())

	require.NoError(t, s.MutateStatus(context.Background(), "a", models.StatusInProgress, models.Understanding{}))
	assert.Equal(t, 2, s.CountByStatus()[models.StatusInProgress])
}

func TestProgress_StatsAndRecommendationsAreCached(t *testing.T) {
	s, api := newProgress(t)
	api.progressStats = func(ctx context.Context) (*models.ProgressStats, error) {
		return &models.ProgressStats{InProgressCount: 3, ThisWeekUnderstood: 2, StreakDays: 5}, nil
	}
	var gotLimit int
	api.recommendations = func(ctx context.Context, limit int) ([]models.Recommendation, error) {
		gotLimit = limit
		return []models.Recommendation{{KazanimCode: "M.8.1.2"}}, nil
	}
	ctx := context.Background()

	assert.Nil(t, s.CachedStats())
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.StreakDays)
	assert.Equal(t, *st, *s.CachedStats())

	recs, err := s.Recommendations(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, gotLimit)
	assert.Equal(t, recs, s.CachedRecommendations())

	s.Clear()
	assert.Nil(t, s.CachedStats())
	assert.Empty(t, s.CachedRecommendations())
	assert.Zero(t, s.Len())
}

func TestProgress_StatsFailureGoesToErrorSlot(t *testing.T) {
	s, api := newProgress(t)
	api.progressStats = func(ctx context.Context) (*models.ProgressStats, error) {
		return nil, client.NewAPIError(429, "slow down")
	}

	_, err := s.Stats(context.Background())
	require.ErrorIs(t, err, common.ErrRateLimited)
	require.ErrorIs(t, s.Err(), common.ErrRateLimited)
	assert.Nil(t, s.CachedStats())
}
