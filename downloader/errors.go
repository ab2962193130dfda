package downloader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedBackend is returned for an unknown backend kind, before any
// network I/O happens.
var ErrUnsupportedBackend = errors.New("unsupported backend")

// ConnectionError indicates the handshake or login with a backend failed
type ConnectionError struct {
	Backend Kind
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates a backend answered with something we could not
// understand, or reported a failure for the call.
type ProtocolError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ReplaceError indicates a single tracker edit failed
type ReplaceError struct {
	Hash    string
	URL     string
	Message string
	Err     error
}

func (e *ReplaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}
