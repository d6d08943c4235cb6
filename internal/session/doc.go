// Package session is the interactive core of the hazard map client.
//
// Each piece of UI state has exactly one owner with explicit transitions:
//
//	ViewStateController  map center and zoom
//	DrawModeController   Browsing or Reporting, gated by AuthGate
//	FormController       category and notes of the report being drafted
//	AuthGate             login status and the current access token
//	HazardCache          last-known hazard collection plus optimistic entries
//
// MapFeatureLayer ([Project]) and [PopupController] are derived views with no
// state of their own. Map engine callbacks are routed through a [Handlers]
// table registered once the map reports it has loaded.
//
// # Optimistic Submission
//
// Submitting a report is a two-phase protocol. The speculative hazard is
// appended to the cached snapshot before the create request is sent (apply).
// A successful create triggers a full refetch that replaces the snapshot,
// speculative entry included (commit). A failed create surfaces an error
// notice and leaves the speculative entry visible until the next refetch
// (abort); there is no rollback.
package session
