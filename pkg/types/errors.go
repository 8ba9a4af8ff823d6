package types

import "errors"

// Domain errors shared across components
var (
	// ErrMissingURLOrTitle marks a capture record without the required
	// url/title fields.
	ErrMissingURLOrTitle = errors.New("missing url or title")

	// ErrBadScheme marks a capture record whose URL scheme is not http or
	// https.
	ErrBadScheme = errors.New("url scheme is not http or https")

	// ErrSuperseded is returned for a search whose result arrived after a
	// newer search was issued from the same engine.
	ErrSuperseded = errors.New("search superseded by a newer request")
)
