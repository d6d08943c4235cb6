package httpadapter_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/adapter/identity"
	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
	"github.com/couchcryptid/hazard-map/internal/session"
)

type memStore struct {
	mu      sync.Mutex
	hazards []domain.Hazard
	listErr error
	creates int
}

func (s *memStore) ListHazards(context.Context) (*geojson.FeatureCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	fc := geojson.NewFeatureCollection()
	for _, h := range s.hazards {
		fc.Append(domain.NewFeature(h))
	}
	return fc, nil
}

func (s *memStore) CreateHazard(_ context.Context, _ string, d domain.Draft) (domain.Hazard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	h := domain.Hazard{
		ID: fmt.Sprintf("hz-%d", len(s.hazards)+1), Lat: d.Lat, Lng: d.Lng, Type: d.Type, Notes: d.Notes,
		CreatedAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	s.hazards = append(s.hazards, h)
	return h, nil
}

func (s *memStore) setListErr(err error) {
	s.mu.Lock()
	s.listErr = err
	s.mu.Unlock()
}

func (s *memStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

type pngIcons struct{}

func (pngIcons) LoadIcon(context.Context, string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(n int) *memStore {
	s := &memStore{}
	for i := 0; i < n; i++ {
		s.hazards = append(s.hazards, domain.Hazard{
			ID: fmt.Sprintf("hz-%d", i+1), Lat: 47 + float64(i)/100, Lng: -122,
			Type: domain.HazardTreeDown, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return s
}

func newSession(store *memStore, token string) *session.Session {
	bus := session.NewBus()
	return session.New(session.Deps{
		Store:       store,
		Identity:    identity.NewStatic(token),
		Audience:    "hazards-api",
		Engine:      session.NewBusEngine(bus),
		Icons:       pngIcons{},
		Bus:         bus,
		InitialView: session.ViewState{Lat: 47.6, Lng: -122.3, Zoom: 12},
		Logger:      discardLogger(),
		Metrics:     observability.NewMetricsForTesting(),
	})
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

var errNotReady = errors.New("not ready yet")
