//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for operations on a connection that was
// closed locally.
var ErrClosed = errors.New("p2p: connection closed")

// TransportError wraps errors from the underlying byte stream. The
// protocol layers use it to distinguish link failures from malformed
// data.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("p2p: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError tests if the error err was caused by a transport
// failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
