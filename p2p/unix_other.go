//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

//go:build !unix

package p2p

import (
	"errors"
)

// NewUnixPair creates a connected pair of unix domain stream sockets
// and returns a channel for each endpoint.
func NewUnixPair() (*Conn, *Conn, error) {
	return nil, nil, &TransportError{
		Op:  "socketpair",
		Err: errors.New("unix domain sockets not supported"),
	}
}
