package session

import (
	"errors"
	"sync"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

// DrawMode is the mutually exclusive UI mode.
type DrawMode int

const (
	Browsing DrawMode = iota
	Reporting
)

func (m DrawMode) String() string {
	if m == Reporting {
		return "reporting"
	}
	return "browsing"
}

// MarshalText encodes the mode name.
func (m DrawMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ErrNotReporting is returned when a report is submitted outside report mode.
var ErrNotReporting = errors.New("not in report mode")

// authChecker is the slice of AuthGate the draw mode needs.
type authChecker interface {
	IsAuthenticated() bool
}

// DrawModeController gates report mode behind authentication. It has no
// network or map side effects.
type DrawModeController struct {
	mu       sync.RWMutex
	mode     DrawMode
	auth     authChecker
	form     *FormController
	notifier Notifier
	onChange func(DrawMode)
}

// NewDrawModeController starts in Browsing.
func NewDrawModeController(auth authChecker, form *FormController, notifier Notifier) *DrawModeController {
	return &DrawModeController{auth: auth, form: form, notifier: notifier}
}

// EnterReporting switches to Reporting with a fresh form. Unauthenticated
// callers get one warning notice and the mode is left unchanged.
func (c *DrawModeController) EnterReporting() error {
	if !c.auth.IsAuthenticated() {
		c.notifier.Notify(Notice{Level: NoticeWarning, Message: domain.ErrUnauthenticated.Error()})
		return domain.ErrUnauthenticated
	}
	c.form.Reset()
	c.set(Reporting)
	return nil
}

// ExitReporting returns to Browsing and resets the form. It always succeeds.
func (c *DrawModeController) ExitReporting() {
	c.form.Reset()
	c.set(Browsing)
}

// Toggle flips between the two modes.
func (c *DrawModeController) Toggle() error {
	if c.Mode() == Reporting {
		c.ExitReporting()
		return nil
	}
	return c.EnterReporting()
}

// Mode returns the current mode.
func (c *DrawModeController) Mode() DrawMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *DrawModeController) set(m DrawMode) {
	c.mu.Lock()
	c.mode = m
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange(m)
	}
}
