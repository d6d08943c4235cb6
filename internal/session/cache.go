package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

// HazardCache holds the last-known hazard collection. It is mutated only by
// Refresh (wholesale replace) and by the optimistic append; the later write
// wins.
type HazardCache struct {
	store     domain.HazardStore
	publisher domain.ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	newID     func() string

	mu       sync.RWMutex
	snapshot *geojson.FeatureCollection
	loaded   bool
	onChange []func()

	inflight sync.WaitGroup
}

// NewHazardCache creates an empty cache backed by store.
func NewHazardCache(store domain.HazardStore, logger *slog.Logger, metrics *observability.Metrics) *HazardCache {
	return &HazardCache{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		newID:    uuid.NewString,
		snapshot: geojson.NewFeatureCollection(),
	}
}

// SetPublisher installs an optional sink for confirmed hazards.
func (c *HazardCache) SetPublisher(p domain.ReportPublisher) {
	c.publisher = p
}

// OnChange registers fn to run after every snapshot mutation.
func (c *HazardCache) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current collection safe to read or extend.
func (c *HazardCache) Snapshot() *geojson.FeatureCollection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.CloneCollection(c.snapshot)
}

// Len returns the number of features, optimistic entries included.
func (c *HazardCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot.Features)
}

// Loaded reports whether at least one refresh has succeeded.
func (c *HazardCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Refresh fetches the authoritative collection and replaces the snapshot. On
// failure the previous snapshot is kept and the error is returned.
func (c *HazardCache) Refresh(ctx context.Context) error {
	start := time.Now()
	fc, err := c.store.ListHazards(ctx)
	c.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.Refreshes.WithLabelValues("error").Inc()
		c.logger.Warn("hazard refresh failed, keeping previous snapshot", "error", err, "cached", c.Len())
		return fmt.Errorf("refresh hazards: %w", err)
	}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}

	c.metrics.Refreshes.WithLabelValues("success").Inc()
	c.replace(fc)
	c.logger.Debug("hazard snapshot replaced", "features", len(fc.Features))
	return nil
}

// Submission tracks one optimistic create request.
type Submission struct {
	LocalID string
	Draft   domain.Draft

	done    chan struct{}
	created domain.Hazard
	err     error
}

// Done is closed once the create request and any follow-up refresh finish.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Err returns the create error after Done is closed.
func (s *Submission) Err() error { return s.err }

// Created returns the stored hazard after a successful create.
func (s *Submission) Created() domain.Hazard { return s.created }

// SubmitOptimistic appends a speculative copy of draft to the snapshot and
// sends the create request in the background. With no token it fails before
// any network call.
func (c *HazardCache) SubmitOptimistic(ctx context.Context, draft domain.Draft, token string) (*Submission, error) {
	if token == "" {
		c.metrics.Submissions.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("submit hazard: %w", domain.ErrTokenUnavailable)
	}
	if err := draft.Validate(); err != nil {
		c.metrics.Submissions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	sub := &Submission{
		LocalID: c.newID(),
		Draft:   draft,
		done:    make(chan struct{}),
	}
	c.apply(draft.Speculative(sub.LocalID))

	// Issued requests are not cancellable.
	bg := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(sub.done)
		c.send(bg, sub, token)
	}()
	return sub, nil
}

// Wait blocks until every in-flight submission has settled.
func (c *HazardCache) Wait() {
	c.inflight.Wait()
}

func (c *HazardCache) send(ctx context.Context, sub *Submission, token string) {
	created, err := c.store.CreateHazard(ctx, token, sub.Draft)
	if err != nil {
		sub.err = fmt.Errorf("create hazard: %w", err)
		c.abort(sub)
		return
	}
	sub.created = created
	c.commit(ctx, sub)
}

// apply is the speculative phase.
func (c *HazardCache) apply(h domain.Hazard) {
	c.mu.Lock()
	next := domain.CloneCollection(c.snapshot)
	next.Append(domain.NewFeature(h))
	c.snapshot = next
	hooks := c.onChange
	c.mu.Unlock()

	c.metrics.OptimisticApplied.Inc()
	c.metrics.CachedHazards.Set(float64(len(next.Features)))
	c.logger.Debug("optimistic hazard applied", "local_id", h.LocalID, "hazard_type", h.Type.String())
	runHooks(hooks)
}

// commit reconciles with the store by refetching. The speculative entry is
// replaced, never merged.
func (c *HazardCache) commit(ctx context.Context, sub *Submission) {
	c.metrics.Submissions.WithLabelValues("committed").Inc()
	c.logger.Info("hazard created", "id", sub.created.ID, "local_id", sub.LocalID)

	if c.publisher != nil {
		if err := c.publisher.PublishReport(ctx, sub.created); err != nil {
			c.metrics.ReportsPublished.WithLabelValues("error").Inc()
			c.logger.Warn("publish hazard report failed", "id", sub.created.ID, "error", err)
		} else {
			c.metrics.ReportsPublished.WithLabelValues("success").Inc()
		}
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-submit refresh failed, optimistic entry kept until next refresh",
			"local_id", sub.LocalID, "error", err)
	}
}

// abort leaves the speculative entry in place until the next refresh.
func (c *HazardCache) abort(sub *Submission) {
	c.metrics.Submissions.WithLabelValues("aborted").Inc()
	c.logger.Error("hazard create failed, optimistic entry kept until next refresh",
		"local_id", sub.LocalID, "error", sub.err)
}

func (c *HazardCache) replace(fc *geojson.FeatureCollection) {
	c.mu.Lock()
	c.snapshot = fc
	c.loaded = true
	hooks := c.onChange
	c.mu.Unlock()

	c.metrics.CachedHazards.Set(float64(len(fc.Features)))
	runHooks(hooks)
}

func runHooks(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}
