package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an action needs a signed-in user.
	ErrUnauthenticated = errors.New("you must be logged in to report hazards")

	// ErrTokenUnavailable means the user is signed in but no access token has
	// been fetched yet, or the fetch failed. Submission treats it the same as
	// ErrUnauthenticated.
	ErrTokenUnavailable = errors.New("access token not available yet")

	// ErrInvalidDraft is returned for drafts that can never be stored.
	ErrInvalidDraft = errors.New("invalid hazard draft")

	// ErrNotPoint is returned when a feature's geometry is not a point.
	ErrNotPoint = errors.New("feature geometry is not a point")
)
