package knowledge

import "errors"

var (
	// ErrMissingDocument signals that the knowledge document source does not exist.
	ErrMissingDocument = errors.New("knowledge document not found")
	// ErrMalformedDocument signals that the source exists but is not a topic mapping.
	ErrMalformedDocument = errors.New("malformed knowledge document")
)
