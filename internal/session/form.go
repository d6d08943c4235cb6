package session

import (
	"sync"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

// FormState is the report being drafted. Notes only matter for OTHER.
type FormState struct {
	HazardType domain.HazardType `json:"hazardType"`
	Notes      string            `json:"notes"`
}

// DefaultFormState is the state of a fresh form.
func DefaultFormState() FormState {
	return FormState{HazardType: domain.DefaultHazardType}
}

// FormController owns the FormState.
type FormController struct {
	mu    sync.RWMutex
	state FormState
}

// NewFormController returns a controller holding the default form.
func NewFormController() *FormController {
	return &FormController{state: DefaultFormState()}
}

// SelectHazardType switches category by wire name. Unknown values are
// ignored. Any successful selection discards the notes, even when the
// category does not change.
func (c *FormController) SelectHazardType(value string) bool {
	t, ok := domain.ParseHazardType(value)
	if !ok {
		return false
	}
	c.mu.Lock()
	c.state = FormState{HazardType: t}
	c.mu.Unlock()
	return true
}

// SetNotes stores text verbatim. Whether the notes field is shown is up to
// the display layer.
func (c *FormController) SetNotes(text string) {
	c.mu.Lock()
	c.state.Notes = text
	c.mu.Unlock()
}

// Reset restores the default form.
func (c *FormController) Reset() {
	c.mu.Lock()
	c.state = DefaultFormState()
	c.mu.Unlock()
}

// Current returns a copy of the form.
func (c *FormController) Current() FormState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
