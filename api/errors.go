package api

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for operations the active server dialect does
// not offer, such as registration or a library rescan on Generic-REST.
var ErrUnsupported = errors.New("operation not supported by this server dialect")

// AuthError is a login or registration rejected by the server. Message is
// the server-supplied text, verbatim.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RemoteError is an envelope-level failure on any non-auth call: the
// transport succeeded but the server reported an error inside the envelope.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// TransportError is a failure below the envelope layer: network errors,
// unexpected HTTP statuses, or undecodable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }
