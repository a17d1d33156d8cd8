package tasks

import "errors"

// ErrUnauthenticated is returned, without contacting the backend, when a
// mutation is attempted with nobody signed in.
var ErrUnauthenticated = errors.New("not authenticated")

// RemoteError wraps any failure reported by the persistence service.
type RemoteError struct {
	Op  string // fetch, create, update, delete
	Err error
}

func (e *RemoteError) Error() string {
	return e.Op + " task: " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error { return e.Err }
