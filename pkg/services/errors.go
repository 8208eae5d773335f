package services

import "errors"

// Sentinel errors separating "bad request" from "bug" at the service
// boundary. Handlers map ErrUnknownItem to a client error; everything
// wrapping ErrInvariant is an internal precondition violation and must
// surface as a server error, never be silently defaulted.
var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrInvalidPeriod = errors.New("invalid forecast period")
	ErrInvariant     = errors.New("internal invariant violation")
)
