package musicxml

import "errors"

// Fatal import errors. Callers match them with errors.Is; the returned error
// wraps one of these with detail.
var (
	ErrMalformedXML        = errors.New("musicxml: malformed document")
	ErrContainerMember     = errors.New("musicxml: container member not found")
	ErrUnsupportedTimewise = errors.New("musicxml: score-timewise documents are not supported")
	ErrUnrecognizedRoot    = errors.New("musicxml: unrecognized root element")
	ErrMissingElement      = errors.New("musicxml: required element missing")
)
