//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markkurossi/mpsi/ot"
)

var (
	_ ot.IO   = &Conn{}
	_ Channel = &Conn{}
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024

	// MaxFrameSize defines the maximum size of a data frame.
	MaxFrameSize = 1 << 30

	// drainTimeout limits how long Close waits for the writer to
	// complete the flushed data.
	drainTimeout = 5 * time.Second
)

// Channel defines a point-to-point message link between two parties.
// Messages are delivered in FIFO order. Closing either endpoint makes
// both endpoints fail subsequent and pending I/O.
type Channel interface {
	ot.IO

	// Close closes the channel. It is safe to call Close multiple
	// times and concurrently with the other operations.
	Close() error

	// Stats returns the channel I/O statistics.
	Stats() IOStats
}

// Conn implements a protocol connection.
type Conn struct {
	conn      io.ReadWriteCloser
	WriteBuf  []byte
	WritePos  int
	ReadBuf   []byte
	ReadStart int
	ReadEnd   int
	stats     IOStats

	fromWriter chan []byte
	toWriter   chan []byte
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error
	closed     atomic.Bool

	m         sync.Mutex
	writerErr error
}

// IOStats implements I/O statistics.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Add adds the argument stats to this IOStats and returns the sum.
func (stats IOStats) Add(o IOStats) IOStats {
	result := NewIOStats()
	result.Sent.Store(stats.Sent.Load() + o.Sent.Load())
	result.Recvd.Store(stats.Recvd.Load() + o.Recvd.Load())
	result.Flushed.Store(stats.Flushed.Load() + o.Flushed.Load())
	return result
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent.Load() + stats.Recvd.Load()
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriteCloser) *Conn {
	c := &Conn{
		conn:       conn,
		ReadBuf:    make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		stats:      NewIOStats(),
	}
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}
	c.WriteBuf = <-c.fromWriter

	go c.writer()

	return c
}

// Stats returns the connection I/O statistics.
func (c *Conn) Stats() IOStats {
	return c.stats
}

func (c *Conn) writer() {
	defer close(c.writerDone)
	for {
		select {
		case buf := <-c.toWriter:
			_, err := c.conn.Write(buf)
			if err != nil {
				c.m.Lock()
				if c.writerErr == nil {
					c.writerErr = err
				}
				c.m.Unlock()
			}
			c.fromWriter <- buf[0:cap(buf)]

		case <-c.done:
			return
		}
	}
}

func (c *Conn) error(op string, err error) error {
	if c.closed.Load() {
		err = ErrClosed
	}
	return &TransportError{
		Op:  op,
		Err: err,
	}
}

// NeedSpace ensures the write buffer has space for count bytes. The
// function flushes the output if needed.
func (c *Conn) NeedSpace(count int) error {
	if c.WritePos+count > len(c.WriteBuf) {
		return c.Flush()
	}
	return nil
}

// Flush flushed any pending data in the connection.
func (c *Conn) Flush() error {
	if c.closed.Load() {
		return c.error("write", ErrClosed)
	}
	c.m.Lock()
	err := c.writerErr
	c.m.Unlock()
	if err != nil {
		return c.error("write", err)
	}
	if c.WritePos == 0 {
		return nil
	}

	c.stats.Sent.Add(uint64(c.WritePos))
	select {
	case c.toWriter <- c.WriteBuf[0:c.WritePos]:
	case <-c.done:
		return c.error("write", ErrClosed)
	}
	select {
	case c.WriteBuf = <-c.fromWriter:
	case <-c.done:
		return c.error("write", ErrClosed)
	}
	c.WritePos = 0
	c.stats.Flushed.Add(1)

	return nil
}

// Fill fills the input buffer from the connection so that it holds at
// least n unread bytes. Any unused data in the buffer is moved to the
// beginning of the buffer.
func (c *Conn) Fill(n int) error {
	if n > len(c.ReadBuf) {
		return fmt.Errorf("p2p: fill %d exceeds buffer size %d",
			n, len(c.ReadBuf))
	}
	if c.ReadStart < c.ReadEnd {
		copy(c.ReadBuf[0:], c.ReadBuf[c.ReadStart:c.ReadEnd])
		c.ReadEnd -= c.ReadStart
		c.ReadStart = 0
	} else {
		c.ReadStart = 0
		c.ReadEnd = 0
	}
	for c.ReadStart+n > c.ReadEnd {
		got, err := c.conn.Read(c.ReadBuf[c.ReadEnd:])
		c.stats.Recvd.Add(uint64(got))
		c.ReadEnd += got
		if err != nil {
			if c.ReadStart+n <= c.ReadEnd {
				break
			}
			return c.error("read", err)
		}
	}
	return nil
}

// Close closes the connection. Flushed data is written to the
// underlying stream before it is closed and any unflushed data is
// discarded. Close unblocks all pending operations of both endpoints.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)

		// The writer may hold a flushed buffer. A writer blocked on a
		// peer that does not read is released by closing the stream.
		timer := time.NewTimer(drainTimeout)
		select {
		case <-c.writerDone:
		case <-timer.C:
		}
		timer.Stop()

		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// SendByte sends a byte value.
func (c *Conn) SendByte(val byte) error {
	if err := c.NeedSpace(1); err != nil {
		return err
	}
	c.WriteBuf[c.WritePos] = val
	c.WritePos++
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	if err := c.NeedSpace(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.WriteBuf[c.WritePos:], uint32(val))
	c.WritePos += 4
	return nil
}

// SendData sends binary data. Data larger than the write buffer is
// sent in buffer-sized pieces.
func (c *Conn) SendData(val []byte) error {
	if len(val) > MaxFrameSize {
		return fmt.Errorf("p2p: frame too large: %d > %d",
			len(val), MaxFrameSize)
	}
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	for len(val) > 0 {
		if c.WritePos == len(c.WriteBuf) {
			if err := c.Flush(); err != nil {
				return err
			}
		}
		n := copy(c.WriteBuf[c.WritePos:], val)
		c.WritePos += n
		val = val[n:]
	}
	return nil
}

// SendBlock sends an OT block.
func (c *Conn) SendBlock(val ot.Block) error {
	if err := c.NeedSpace(16); err != nil {
		return err
	}
	var data ot.BlockData
	val.GetData(&data)
	copy(c.WriteBuf[c.WritePos:], data[:])
	c.WritePos += len(data)

	return nil
}

// SendString sends a string value.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// ReceiveByte receives a byte value.
func (c *Conn) ReceiveByte() (byte, error) {
	if c.ReadStart+1 > c.ReadEnd {
		if err := c.Fill(1); err != nil {
			return 0, err
		}
	}
	val := c.ReadBuf[c.ReadStart]
	c.ReadStart++
	return val, nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if c.ReadStart+4 > c.ReadEnd {
		if err := c.Fill(4); err != nil {
			return 0, err
		}
	}
	val := binary.BigEndian.Uint32(c.ReadBuf[c.ReadStart:])
	c.ReadStart += 4

	return int(val), nil
}

// ReceiveData receives binary data.
func (c *Conn) ReceiveData() ([]byte, error) {
	l, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if l > MaxFrameSize {
		return nil, fmt.Errorf("p2p: frame too large: %d > %d",
			l, MaxFrameSize)
	}
	result := make([]byte, l)

	if l <= len(c.ReadBuf) {
		if c.ReadStart+l > c.ReadEnd {
			if err := c.Fill(l); err != nil {
				return nil, err
			}
		}
		copy(result, c.ReadBuf[c.ReadStart:c.ReadStart+l])
		c.ReadStart += l
		return result, nil
	}

	// Large frame: consume buffered data and read the rest directly.
	n := copy(result, c.ReadBuf[c.ReadStart:c.ReadEnd])
	c.ReadStart += n
	got, err := io.ReadFull(c.conn, result[n:])
	c.stats.Recvd.Add(uint64(got))
	if err != nil {
		return nil, c.error("read", err)
	}
	return result, nil
}

// ReceiveBlock receives an OT block.
func (c *Conn) ReceiveBlock() (ot.Block, error) {
	var val ot.Block
	if c.ReadStart+16 > c.ReadEnd {
		if err := c.Fill(16); err != nil {
			return val, err
		}
	}
	val.SetBytes(c.ReadBuf[c.ReadStart : c.ReadStart+16])
	c.ReadStart += 16

	return val, nil
}

// ReceiveString receives a string value.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
