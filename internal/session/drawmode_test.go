package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-map/internal/domain"
)

type staticAuth bool

func (a staticAuth) IsAuthenticated() bool { return bool(a) }

func TestDrawMode_EnterUnauthenticatedWarnsOnce(t *testing.T) {
	notices := &noticeRecorder{}
	form := NewFormController()
	c := NewDrawModeController(staticAuth(false), form, notices)

	err := c.EnterReporting()

	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, Browsing, c.Mode())
	require.Len(t, notices.all(), 1)
	assert.Equal(t, NoticeWarning, notices.all()[0].Level)
}

func TestDrawMode_EnterUnauthenticatedFromReportingUnchanged(t *testing.T) {
	auth := &fakeIdentity{authenticated: true}
	notices := &noticeRecorder{}
	c := NewDrawModeController(auth, NewFormController(), notices)
	require.NoError(t, c.EnterReporting())

	auth.authenticated = false
	require.Error(t, c.EnterReporting())

	assert.Equal(t, Reporting, c.Mode())
	assert.Len(t, notices.all(), 1)
}

func TestDrawMode_EnterResetsForm(t *testing.T) {
	form := NewFormController()
	form.SelectHazardType("OTHER")
	form.SetNotes("stale")
	c := NewDrawModeController(staticAuth(true), form, &noticeRecorder{})

	require.NoError(t, c.EnterReporting())

	assert.Equal(t, Reporting, c.Mode())
	assert.Equal(t, DefaultFormState(), form.Current())
}

func TestDrawMode_ExitAlwaysSucceedsAndResets(t *testing.T) {
	form := NewFormController()
	c := NewDrawModeController(staticAuth(true), form, &noticeRecorder{})
	require.NoError(t, c.EnterReporting())
	form.SelectHazardType("TREE_DOWN")

	c.ExitReporting()

	assert.Equal(t, Browsing, c.Mode())
	assert.Equal(t, DefaultFormState(), form.Current())

	// Exiting while already browsing is fine too.
	c.ExitReporting()
	assert.Equal(t, Browsing, c.Mode())
}

func TestDrawMode_Toggle(t *testing.T) {
	c := NewDrawModeController(staticAuth(true), NewFormController(), &noticeRecorder{})

	require.NoError(t, c.Toggle())
	assert.Equal(t, Reporting, c.Mode())
	require.NoError(t, c.Toggle())
	assert.Equal(t, Browsing, c.Mode())
}

func TestDrawMode_String(t *testing.T) {
	assert.Equal(t, "browsing", Browsing.String())
	assert.Equal(t, "reporting", Reporting.String())
}
