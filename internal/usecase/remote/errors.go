package remote

import "errors"

// ErrLoginFailed is returned by Dialect.ParseLoginResult when the remote
// rejected credentials outright (as opposed to a transport-level failure,
// which surfaces as a wrapped network error instead).
var ErrLoginFailed = errors.New("remote source login rejected")

// ErrSessionExpired is returned when an authenticated call comes back 401,
// signalling the dialect's session/token is no longer valid.
var ErrSessionExpired = errors.New("remote source session expired")
