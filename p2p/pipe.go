//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

// Pipe implements the Conn interface as a bidirectional communication
// pipe. Anything send to the first endpoint can be received from the
// second and vice versa.
func Pipe() (*Conn, *Conn) {
	return NewCrossBeam()
}
