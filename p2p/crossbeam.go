//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"io"
	"sync"
)

// queue implements an unbounded in-memory byte chunk queue.
type queue struct {
	m      sync.Mutex
	c      *sync.Cond
	chunks [][]byte
	closed bool
}

func newQueue() *queue {
	q := new(queue)
	q.c = sync.NewCond(&q.m)
	return q
}

func (q *queue) write(data []byte) (int, error) {
	q.m.Lock()
	defer q.m.Unlock()

	if q.closed {
		return 0, io.ErrClosedPipe
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	q.chunks = append(q.chunks, chunk)
	q.c.Signal()

	return len(data), nil
}

func (q *queue) read(data []byte) (int, error) {
	q.m.Lock()
	defer q.m.Unlock()

	for len(q.chunks) == 0 && !q.closed {
		q.c.Wait()
	}
	if len(q.chunks) == 0 {
		return 0, io.EOF
	}
	var n int
	for n < len(data) && len(q.chunks) > 0 {
		got := copy(data[n:], q.chunks[0])
		n += got
		if got == len(q.chunks[0]) {
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
		} else {
			q.chunks[0] = q.chunks[0][got:]
		}
	}
	return n, nil
}

func (q *queue) close() {
	q.m.Lock()
	q.closed = true
	q.c.Broadcast()
	q.m.Unlock()
}

// beamLink holds the two directions of a cross-beam link.
type beamLink struct {
	once sync.Once
	ab   *queue
	ba   *queue
}

func (l *beamLink) close() {
	l.once.Do(func() {
		l.ab.close()
		l.ba.close()
	})
}

// crossBeam implements one endpoint of an in-process link.
type crossBeam struct {
	link   *beamLink
	r      *queue
	w      *queue
	m      sync.Mutex
	closed bool
}

func (cb *crossBeam) Read(data []byte) (int, error) {
	cb.m.Lock()
	closed := cb.closed
	cb.m.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return cb.r.read(data)
}

func (cb *crossBeam) Write(data []byte) (int, error) {
	return cb.w.write(data)
}

func (cb *crossBeam) Close() error {
	cb.m.Lock()
	cb.closed = true
	cb.m.Unlock()
	cb.link.close()
	return nil
}

// NewCrossBeam creates an in-process channel pair. The endpoints
// exchange byte chunks over unbounded queues so senders never block.
func NewCrossBeam() (*Conn, *Conn) {
	a, b := newCrossBeamLink()
	return NewConn(a), NewConn(b)
}

func newCrossBeamLink() (*crossBeam, *crossBeam) {
	link := &beamLink{
		ab: newQueue(),
		ba: newQueue(),
	}
	a := &crossBeam{
		link: link,
		r:    link.ba,
		w:    link.ab,
	}
	b := &crossBeam{
		link: link,
		r:    link.ab,
		w:    link.ba,
	}
	return a, b
}
