package api

import "errors"

var (
	// ErrAuth means the remote account rejected the credentials or the session token.
	ErrAuth = errors.New("authentication rejected")
	// ErrTransientFetch covers network faults, timeouts and upstream 5xx/429 responses.
	ErrTransientFetch = errors.New("transient fetch error")
	// ErrUnexpectedStatus is returned for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status from smart meter api")
)
