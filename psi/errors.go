//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"context"
	"fmt"
	"io"

	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/text/superscript"
	"github.com/pkg/errors"
)

// ErrorKind classifies protocol failures.
type ErrorKind int

// Error kinds.
const (
	ProtocolViolation ErrorKind = iota
	ConfigurationError
	TransportError
	EncodingFailure
	InternalError
)

var errorKinds = map[ErrorKind]string{
	ProtocolViolation:  "protocol violation",
	ConfigurationError: "configuration error",
	TransportError:     "transport error",
	EncodingFailure:    "encoding failure",
	InternalError:      "internal error",
}

func (k ErrorKind) String() string {
	name, ok := errorKinds[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{ErrorKind %d}", k)
}

// Error describes why a party aborted the protocol. Party and Peer
// are -1 if the failure is not bound to a party or to a peer.
type Error struct {
	Kind  ErrorKind
	Party int
	Peer  int
	Err   error
}

func (e *Error) Error() string {
	var where string
	if e.Party >= 0 {
		where = "P" + superscript.Itoa(e.Party)
		if e.Peer >= 0 {
			where += "↔P" + superscript.Itoa(e.Peer)
		}
		where += ": "
	}
	return fmt.Sprintf("psi: %s%s: %v", where, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind tests if err is a psi error of the argument kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func configError(format string, a ...interface{}) *Error {
	return &Error{
		Kind:  ConfigurationError,
		Party: -1,
		Peer:  -1,
		Err:   errors.Errorf(format, a...),
	}
}

// entropyError reports a failure of the party's random source.
type entropyError struct {
	err error
}

func (e *entropyError) Error() string {
	return fmt.Sprintf("entropy source: %v", e.err)
}

func (e *entropyError) Unwrap() error {
	return e.err
}

// entropyReader marks the errors of the random source r so they
// classify as local failures.
type entropyReader struct {
	r io.Reader
}

func (r *entropyReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		err = &entropyError{err: err}
	}
	return n, err
}

// classify wraps err into an Error for the party and peer. Failures
// of the local random source are internal errors. Any other error
// that is neither a transport error nor an encoding failure was
// caused by message content the party could not process, and it is
// a protocol violation.
func classify(err error, party, peer int) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Party < 0 {
			e.Party = party
		}
		if e.Peer < 0 {
			e.Peer = peer
		}
		return e
	}

	var ee *entropyError
	var kind ErrorKind
	switch {
	case errors.As(err, &ee):
		kind = InternalError

	case p2p.IsTransportError(err), errors.Is(err, p2p.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		kind = TransportError

	case errors.Is(err, solver.ErrEncodingFailure):
		kind = EncodingFailure

	default:
		kind = ProtocolViolation
	}
	return &Error{
		Kind:  kind,
		Party: party,
		Peer:  peer,
		Err:   err,
	}
}

// rootCause returns the error that caused the session abort. The
// parties observing a failing peer fail with transport errors, so
// the first error of another kind is the cause. The errs are in the
// order the parties failed.
func rootCause(errs []error) error {
	for _, err := range errs {
		if !IsKind(err, TransportError) {
			return err
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
