//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

//go:build unix

package p2p

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// NewUnixPair creates a connected pair of unix domain stream sockets
// and returns a channel for each endpoint.
func NewUnixPair() (*Conn, *Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX,
		unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, &TransportError{
			Op:  "socketpair",
			Err: err,
		}
	}
	c0, err := fileConn(fds[0], "unix0")
	if err != nil {
		unix.Close(fds[1])
		return nil, nil, err
	}
	c1, err := fileConn(fds[1], "unix1")
	if err != nil {
		c0.Close()
		return nil, nil, err
	}
	return NewConn(c0), NewConn(c1), nil
}

func fileConn(fd int, name string) (net.Conn, error) {
	f := os.NewFile(uintptr(fd), name)
	if f == nil {
		unix.Close(fd)
		return nil, fmt.Errorf("p2p: invalid socket fd %d", fd)
	}
	defer f.Close()

	conn, err := net.FileConn(f)
	if err != nil {
		return nil, &TransportError{
			Op:  "fileconn",
			Err: err,
		}
	}
	return conn, nil
}
