package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

// --- fake hazard store ---

type createCall struct {
	token string
	draft domain.Draft
}

type fakeStore struct {
	mu        sync.Mutex
	features  []*geojson.Feature
	listErr   error
	createErr error
	listCalls int
	creates   []createCall
	nextID    int

	// release, when set, holds CreateHazard until it is closed.
	release chan struct{}
}

func newFakeStore(n int) *fakeStore {
	s := &fakeStore{}
	for i := 0; i < n; i++ {
		s.nextID++
		s.features = append(s.features, domain.NewFeature(domain.Hazard{
			ID:        fmt.Sprintf("hz-%d", s.nextID),
			Lat:       47 + float64(i)/10,
			Lng:       -122,
			Type:      domain.HazardFloodedRoad,
			CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}))
	}
	return s
}

func (s *fakeStore) ListHazards(_ context.Context) (*geojson.FeatureCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	fc := geojson.NewFeatureCollection()
	fc.Features = append(fc.Features, s.features...)
	return fc, nil
}

func (s *fakeStore) CreateHazard(_ context.Context, token string, d domain.Draft) (domain.Hazard, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, createCall{token: token, draft: d})
	if s.createErr != nil {
		return domain.Hazard{}, s.createErr
	}
	s.nextID++
	h := domain.Hazard{
		ID:        fmt.Sprintf("hz-%d", s.nextID),
		Lat:       d.Lat,
		Lng:       d.Lng,
		Type:      d.Type,
		Notes:     d.Notes,
		CreatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	s.features = append(s.features, domain.NewFeature(h))
	return h, nil
}

func (s *fakeStore) setListErr(err error) {
	s.mu.Lock()
	s.listErr = err
	s.mu.Unlock()
}

func (s *fakeStore) createCalls() []createCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]createCall(nil), s.creates...)
}

func (s *fakeStore) lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// --- fake identity provider ---

type fakeIdentity struct {
	mu            sync.Mutex
	authenticated bool
	token         string
	tokenErr      error
	loginErr      error
	audiences     []string
}

func (f *fakeIdentity) Login(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return f.loginErr
	}
	f.authenticated = true
	return nil
}

func (f *fakeIdentity) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authenticated = false
	return nil
}

func (f *fakeIdentity) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeIdentity) AccessToken(_ context.Context, audience string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audiences = append(f.audiences, audience)
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

// --- recording map engine ---

type recordingEngine struct {
	mu      sync.Mutex
	images  []string
	cursors []Cursor
	popups  []Popup
	renders []Layers
	addErr  error
}

func (e *recordingEngine) AddImage(name string, _ []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.addErr != nil {
		return e.addErr
	}
	e.images = append(e.images, name)
	return nil
}

func (e *recordingEngine) SetCursor(c Cursor) {
	e.mu.Lock()
	e.cursors = append(e.cursors, c)
	e.mu.Unlock()
}

func (e *recordingEngine) ShowPopup(p Popup) {
	e.mu.Lock()
	e.popups = append(e.popups, p)
	e.mu.Unlock()
}

func (e *recordingEngine) Render(l Layers) {
	e.mu.Lock()
	e.renders = append(e.renders, l)
	e.mu.Unlock()
}

func (e *recordingEngine) lastRender() Layers {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.renders) == 0 {
		return Layers{}
	}
	return e.renders[len(e.renders)-1]
}

// --- icon loader ---

type fakeIcons struct {
	failOn string
}

func (f fakeIcons) LoadIcon(_ context.Context, name string) ([]byte, error) {
	if name == f.failOn {
		return nil, errors.New("404 not found")
	}
	return []byte("png:" + name), nil
}

// --- notice recorder ---

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *noticeRecorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testRig struct {
	session  *Session
	store    *fakeStore
	identity *fakeIdentity
	engine   *recordingEngine
	notices  *noticeRecorder
}

func newTestRig(store *fakeStore, identity *fakeIdentity) *testRig {
	rig := &testRig{
		store:    store,
		identity: identity,
		engine:   &recordingEngine{},
		notices:  &noticeRecorder{},
	}
	rig.session = New(Deps{
		Store:       store,
		Identity:    identity,
		Audience:    "hazards-api",
		Engine:      rig.engine,
		Icons:       fakeIcons{},
		Notifier:    rig.notices,
		InitialView: ViewState{Lat: 47.6, Lng: -122.3, Zoom: 12},
		Logger:      discardLogger(),
		Metrics:     observability.NewMetricsForTesting(),
	})
	return rig
}
