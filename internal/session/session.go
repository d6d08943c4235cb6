package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/observability"
)

// Deps are the collaborators a Session is built from. Engine, Icons,
// Geocoder, Publisher and Notifier are optional.
type Deps struct {
	Store       domain.HazardStore
	Identity    domain.IdentityProvider
	Audience    string
	Engine      MapEngine
	Icons       IconLoader
	Geocoder    domain.Geocoder
	Publisher   domain.ReportPublisher
	Notifier    Notifier
	Bus         *Bus
	InitialView ViewState
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Session wires the state containers together and owns the event table.
type Session struct {
	Auth   *AuthGate
	View   *ViewStateController
	Form   *FormController
	Draw   *DrawModeController
	Cache  *HazardCache
	Popups *PopupController
	Bus    *Bus

	handlers *Handlers
	engine   MapEngine
	icons    IconLoader
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics

	loadOnce sync.Mutex
	loaded   bool

	pending  atomic.Int32
	watchers sync.WaitGroup
}

// New builds a session in Browsing mode with an empty cache.
func New(d Deps) *Session {
	if d.Engine == nil {
		d.Engine = nopEngine{}
	}
	if d.Bus == nil {
		d.Bus = NewBus()
	}

	s := &Session{
		View:     NewViewStateController(d.InitialView),
		Form:     NewFormController(),
		Bus:      d.Bus,
		handlers: NewHandlers(),
		engine:   d.Engine,
		icons:    d.Icons,
		notifier: d.Notifier,
		logger:   d.Logger,
		metrics:  d.Metrics,
	}
	s.Auth = NewAuthGate(d.Identity, d.Audience, d.Logger)
	s.Draw = NewDrawModeController(s.Auth, s.Form, NotifierFunc(s.notify))
	s.Draw.onChange = func(DrawMode) { s.publishState() }
	s.Cache = NewHazardCache(d.Store, d.Logger, d.Metrics)
	if d.Publisher != nil {
		s.Cache.SetPublisher(d.Publisher)
	}
	s.Cache.OnChange(s.render)
	s.Popups = NewPopupController(d.Engine, d.Geocoder, d.Logger)

	s.handlers.Register(EventLoad, s.handleLoad)
	s.handlers.Register(EventViewportChange, s.handleViewportChange)
	return s
}

// Start fetches a token for an existing login and loads the first snapshot.
// A failed load is returned but leaves the session usable.
func (s *Session) Start(ctx context.Context) error {
	s.Auth.FetchToken(ctx)
	if err := s.Cache.Refresh(ctx); err != nil {
		s.notify(Notice{Level: NoticeError, Message: "Could not load hazards."})
		return err
	}
	return nil
}

// Handle dispatches a map engine event through the handler table.
func (s *Session) Handle(ctx context.Context, ev Event) error {
	return s.handlers.Dispatch(ctx, ev)
}

// Login signs in and fetches a token.
func (s *Session) Login(ctx context.Context) error {
	if err := s.Auth.Login(ctx); err != nil {
		s.notify(Notice{Level: NoticeError, Message: "Login failed."})
		return err
	}
	s.publishState()
	return nil
}

// Logout signs out and leaves report mode.
func (s *Session) Logout(ctx context.Context) error {
	err := s.Auth.Logout(ctx)
	s.Draw.ExitReporting()
	s.publishState()
	return err
}

// EnterReporting starts a new report at the current view center.
func (s *Session) EnterReporting() error {
	return s.Draw.EnterReporting()
}

// CancelReporting discards the draft.
func (s *Session) CancelReporting() {
	s.Draw.ExitReporting()
}

// SelectHazardType changes the draft's category; unknown values are ignored.
func (s *Session) SelectHazardType(value string) {
	if s.Form.SelectHazardType(value) {
		s.publishState()
	}
}

// SetNotes replaces the draft's notes.
func (s *Session) SetNotes(text string) {
	s.Form.SetNotes(text)
	s.publishState()
}

// DraftMarker returns where the draft marker sits, if reporting. It tracks
// the view center live.
func (s *Session) DraftMarker() (ViewState, bool) {
	if s.Draw.Mode() != Reporting {
		return ViewState{}, false
	}
	return s.View.Current(), true
}

// Submit sends the draft. It requires report mode and fetches a current
// token first. The speculative hazard is visible and the session
// is back in Browsing before this returns; the request settles later.
func (s *Session) Submit(ctx context.Context) (*Submission, error) {
	if !s.Auth.IsAuthenticated() {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		s.notify(Notice{Level: NoticeWarning, Message: domain.ErrUnauthenticated.Error()})
		return nil, domain.ErrUnauthenticated
	}
	if s.Draw.Mode() != Reporting {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		return nil, ErrNotReporting
	}
	token, err := s.Auth.FreshToken(ctx)
	if err != nil {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		s.notify(Notice{Level: NoticeWarning, Message: domain.ErrUnauthenticated.Error()})
		return nil, err
	}

	view := s.View.Current()
	form := s.Form.Current()
	draft := domain.Draft{Lat: view.Lat, Lng: view.Lng, Type: form.HazardType}
	if form.HazardType == domain.HazardOther {
		draft.Notes = form.Notes
	}

	sub, err := s.Cache.SubmitOptimistic(ctx, draft, token)
	if err != nil {
		level := NoticeError
		msg := "Failed to submit hazard."
		if errors.Is(err, domain.ErrTokenUnavailable) {
			level, msg = NoticeWarning, domain.ErrUnauthenticated.Error()
		}
		s.notify(Notice{Level: level, Message: msg})
		return nil, err
	}

	s.Draw.ExitReporting()
	s.pending.Add(1)
	s.publishState()

	s.watchers.Add(1)
	go func() {
		defer s.watchers.Done()
		<-sub.Done()
		s.pending.Add(-1)
		if sub.Err() != nil {
			s.notify(Notice{Level: NoticeError, Message: "Failed to submit hazard."})
		} else {
			s.notify(Notice{Level: NoticeInfo, Message: "Hazard reported."})
		}
		s.publishState()
	}()
	return sub, nil
}

// SubmissionPending reports whether any create request is still in flight.
func (s *Session) SubmissionPending() bool {
	return s.pending.Load() > 0
}

// Wait blocks until every submission has settled and been reported.
func (s *Session) Wait() {
	s.Cache.Wait()
	s.watchers.Wait()
}

// Layers projects the current snapshot.
func (s *Session) Layers() Layers {
	return Project(s.Cache.Snapshot())
}

// CheckReadiness returns nil once the first snapshot has loaded.
func (s *Session) CheckReadiness(_ context.Context) error {
	if !s.Cache.Loaded() {
		return errors.New("hazard snapshot has not loaded yet")
	}
	return nil
}

// State is a read-only summary of the session for renderers.
type State struct {
	Mode        DrawMode   `json:"mode"`
	View        ViewState  `json:"view"`
	Form        FormState  `json:"form"`
	Auth        AuthState  `json:"auth"`
	DraftMarker *ViewState `json:"draftMarker,omitempty"`
	Submitting  bool       `json:"submitting"`
	Hazards     int        `json:"hazards"`
}

// State returns the current summary.
func (s *Session) State() State {
	st := State{
		Mode:       s.Draw.Mode(),
		View:       s.View.Current(),
		Form:       s.Form.Current(),
		Auth:       s.Auth.State(),
		Submitting: s.SubmissionPending(),
		Hazards:    s.Cache.Len(),
	}
	if marker, ok := s.DraftMarker(); ok {
		st.DraftMarker = &marker
	}
	return st
}

// handleLoad registers icons and the feature interaction handlers. Icon
// failures abort the load and are not retried.
func (s *Session) handleLoad(ctx context.Context, _ Event) error {
	s.loadOnce.Lock()
	defer s.loadOnce.Unlock()
	if s.loaded {
		return nil
	}

	if s.icons != nil {
		for _, name := range Icons() {
			data, err := s.icons.LoadIcon(ctx, name)
			if err == nil {
				err = s.engine.AddImage(name, data)
			}
			if err != nil {
				s.notify(Notice{Level: NoticeError, Message: "Could not load map icons."})
				return fmt.Errorf("load icon %s: %w", name, err)
			}
		}
	}

	s.handlers.Register(EventClick, s.handleClick)
	s.handlers.Register(EventPointerEnter, s.handlePointer(s.Popups.HandlePointerEnter))
	s.handlers.Register(EventPointerLeave, s.handlePointer(s.Popups.HandlePointerLeave))
	s.loaded = true
	s.logger.Info("map loaded", "icons", len(Icons()))

	s.render()
	return nil
}

func (s *Session) handleViewportChange(_ context.Context, ev Event) error {
	s.View.OnViewportChange(ev.Lat, ev.Lng, ev.Zoom)
	if s.Draw.Mode() == Reporting {
		s.publishState()
	}
	return nil
}

func (s *Session) handleClick(ctx context.Context, ev Event) error {
	if ev.Layer != SymbolLayerID || ev.Feature == nil {
		return nil
	}
	_, err := s.Popups.HandleClick(ctx, ClickEvent{Lng: ev.Lng, Lat: ev.Lat, Feature: ev.Feature})
	return err
}

func (s *Session) handlePointer(fn func()) Handler {
	return func(_ context.Context, ev Event) error {
		if ev.Layer == SymbolLayerID {
			fn()
		}
		return nil
	}
}

func (s *Session) render() {
	s.engine.Render(s.Layers())
}

func (s *Session) publishState() {
	s.Bus.Publish(Update{Kind: UpdateState, Payload: s.State()})
}

func (s *Session) notify(n Notice) {
	s.metrics.Notices.WithLabelValues(string(n.Level)).Inc()
	s.logger.Info("notice", "level", n.Level, "message", n.Message)
	s.Bus.Publish(Update{Kind: UpdateNotice, Payload: n})
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

// Refresh reloads the snapshot on demand. A failure keeps the previous
// snapshot and shows an error notice.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.Cache.Refresh(ctx); err != nil {
		s.notify(Notice{Level: NoticeError, Message: "Could not refresh hazards."})
		return err
	}
	return nil
}

// Updates returns the bus renderers subscribe to.
func (s *Session) Updates() *Bus {
	return s.Bus
}
