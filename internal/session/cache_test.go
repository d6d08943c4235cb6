package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

func newTestCache(store *fakeStore) (*HazardCache, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewHazardCache(store, discardLogger(), m), m
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.Hazard
	err       error
}

func (p *recordingPublisher) PublishReport(_ context.Context, h domain.Hazard) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, h)
	return p.err
}

func TestHazardCache_RefreshReplacesWholesale(t *testing.T) {
	store := newFakeStore(3)
	c, m := newTestCache(store)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Loaded())

	store.features = store.features[:1]
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("success")))
}

func TestHazardCache_RefreshFailureKeepsSnapshot(t *testing.T) {
	store := newFakeStore(5)
	c, m := newTestCache(store)
	require.NoError(t, c.Refresh(context.Background()))
	before := domain.HazardsFromCollection(c.Snapshot())

	store.setListErr(errors.New("connection refused"))
	err := c.Refresh(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	after := domain.HazardsFromCollection(c.Snapshot())
	assert.Len(t, after, 5)
	assert.Equal(t, before, after)
	assert.True(t, c.Loaded())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("error")))
}

func TestHazardCache_RefreshFailureBeforeFirstLoad(t *testing.T) {
	store := newFakeStore(2)
	store.listErr = errors.New("boom")
	c, _ := newTestCache(store)

	require.Error(t, c.Refresh(context.Background()))
	assert.False(t, c.Loaded())
	assert.Equal(t, 0, c.Len())
}

func TestHazardCache_SnapshotIsACopy(t *testing.T) {
	c, _ := newTestCache(newFakeStore(2))
	require.NoError(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	snap.Append(domain.NewFeature(domain.Hazard{ID: "extra"}))

	assert.Equal(t, 2, c.Len())
}

func TestHazardCache_SubmitWithoutTokenSkipsNetwork(t *testing.T) {
	store := newFakeStore(1)
	c, m := newTestCache(store)
	require.NoError(t, c.Refresh(context.Background()))

	sub, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 1, Lng: 1, Type: domain.HazardTreeDown}, "")

	require.ErrorIs(t, err, domain.ErrTokenUnavailable)
	assert.Nil(t, sub)
	assert.Empty(t, store.createCalls())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("rejected")))
}

func TestHazardCache_SubmitInvalidDraftSkipsNetwork(t *testing.T) {
	store := newFakeStore(0)
	c, _ := newTestCache(store)

	_, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 100, Type: domain.HazardOther}, "tok")

	require.ErrorIs(t, err, domain.ErrInvalidDraft)
	assert.Empty(t, store.createCalls())
	assert.Equal(t, 0, c.Len())
}

func TestHazardCache_OptimisticAppendPrecedesResolution(t *testing.T) {
	store := newFakeStore(2)
	store.release = make(chan struct{})
	c, m := newTestCache(store)
	require.NoError(t, c.Refresh(context.Background()))

	draft := domain.Draft{Lat: 47.7, Lng: -122.4, Type: domain.HazardOther, Notes: "debris"}
	sub, err := c.SubmitOptimistic(context.Background(), draft, "tok")
	require.NoError(t, err)

	// Request still blocked: the speculative entry is already visible, last.
	hazards := domain.HazardsFromCollection(c.Snapshot())
	require.Len(t, hazards, 3)
	last := hazards[2]
	assert.True(t, last.Pending)
	assert.Empty(t, last.ID)
	assert.Equal(t, sub.LocalID, last.LocalID)
	assert.Equal(t, "debris", last.Notes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OptimisticApplied))

	close(store.release)
	<-sub.Done()
	require.NoError(t, sub.Err())
}

func TestHazardCache_CommitReplacesOptimisticEntry(t *testing.T) {
	store := newFakeStore(2)
	c, m := newTestCache(store)
	require.NoError(t, c.Refresh(context.Background()))

	draft := domain.Draft{Lat: 47.7, Lng: -122.4, Type: domain.HazardTreeDown}
	sub, err := c.SubmitOptimistic(context.Background(), draft, "tok")
	require.NoError(t, err)
	c.Wait()

	require.NoError(t, sub.Err())
	assert.Equal(t, "hz-3", sub.Created().ID)

	hazards := domain.HazardsFromCollection(c.Snapshot())
	require.Len(t, hazards, 3)
	matches := 0
	for _, h := range hazards {
		assert.False(t, h.Pending, "optimistic entry must be replaced, not merged")
		if h.Lat == draft.Lat && h.Lng == draft.Lng {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
	assert.Equal(t, 2, store.lists())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("committed")))

	calls := store.createCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "tok", calls[0].token)
	assert.Equal(t, draft, calls[0].draft)
}

func TestHazardCache_AbortKeepsOptimisticEntry(t *testing.T) {
	store := newFakeStore(1)
	store.createErr = errors.New("500 internal error")
	c, m := newTestCache(store)
	require.NoError(t, c.Refresh(context.Background()))

	sub, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 1, Lng: 2, Type: domain.HazardFloodedRoad}, "tok")
	require.NoError(t, err)
	c.Wait()

	require.Error(t, sub.Err())
	assert.Contains(t, sub.Err().Error(), "500 internal error")
	hazards := domain.HazardsFromCollection(c.Snapshot())
	require.Len(t, hazards, 2)
	assert.True(t, hazards[1].Pending)
	assert.Equal(t, 1, store.lists(), "no refresh after a failed create")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("aborted")))

	// The next refresh clears the stale entry.
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, c.Len())
}

func TestHazardCache_CommitPublishesReport(t *testing.T) {
	store := newFakeStore(0)
	c, m := newTestCache(store)
	pub := &recordingPublisher{}
	c.SetPublisher(pub)

	_, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 1, Lng: 2, Type: domain.HazardOther, Notes: "n"}, "tok")
	require.NoError(t, err)
	c.Wait()

	require.Len(t, pub.published, 1)
	assert.Equal(t, "hz-1", pub.published[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsPublished.WithLabelValues("success")))
}

func TestHazardCache_PublishFailureDoesNotBlockRefresh(t *testing.T) {
	store := newFakeStore(0)
	c, m := newTestCache(store)
	c.SetPublisher(&recordingPublisher{err: errors.New("broker down")})

	sub, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 1, Lng: 2, Type: domain.HazardOther}, "tok")
	require.NoError(t, err)
	c.Wait()

	require.NoError(t, sub.Err())
	assert.Equal(t, 1, c.Len())
	assert.False(t, domain.HazardsFromCollection(c.Snapshot())[0].Pending)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsPublished.WithLabelValues("error")))
}

func TestHazardCache_SubmitSurvivesCallerCancellation(t *testing.T) {
	store := newFakeStore(0)
	store.release = make(chan struct{})
	c, _ := newTestCache(store)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := c.SubmitOptimistic(ctx, domain.Draft{Lat: 1, Lng: 2, Type: domain.HazardTreeDown}, "tok")
	require.NoError(t, err)
	cancel()
	close(store.release)
	c.Wait()

	require.NoError(t, sub.Err())
	assert.Len(t, store.createCalls(), 1)
}

func TestHazardCache_OnChangeFiresForApplyAndRefresh(t *testing.T) {
	store := newFakeStore(1)
	c, _ := newTestCache(store)
	var mu sync.Mutex
	calls := 0
	c.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.NoError(t, c.Refresh(context.Background()))
	_, err := c.SubmitOptimistic(context.Background(), domain.Draft{Lat: 1, Lng: 2, Type: domain.HazardTreeDown}, "tok")
	require.NoError(t, err)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls) // refresh, apply, post-commit refresh
}
