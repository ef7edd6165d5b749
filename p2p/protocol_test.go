//
// protocol_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/markkurossi/mpsi/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

var tests = []interface{}{
	byte(42),
	uint32(44),
	"Hello, world!",
	ot.Block{D0: 1, D1: 2},
	testData(1024),
	testData(writeBufSize + 3),
	testData(2 * 1024 * 1024),
	testData(17),
}

func writer(c *Conn) error {
	for _, test := range tests {
		var err error
		switch d := test.(type) {
		case byte:
			err = c.SendByte(d)
		case uint32:
			err = c.SendUint32(int(d))
		case string:
			err = c.SendString(d)
		case ot.Block:
			err = c.SendBlock(d)
		case []byte:
			err = c.SendData(d)
		}
		if err != nil {
			return err
		}
	}
	return c.Flush()
}

func testProtocol(t *testing.T, cw, c *Conn) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- writer(cw)
	}()

	for _, test := range tests {
		switch d := test.(type) {
		case byte:
			v, err := c.ReceiveByte()
			require.NoError(t, err)
			assert.Equal(t, d, v)

		case uint32:
			v, err := c.ReceiveUint32()
			require.NoError(t, err)
			assert.Equal(t, int(d), v)

		case string:
			v, err := c.ReceiveString()
			require.NoError(t, err)
			assert.Equal(t, d, v)

		case ot.Block:
			v, err := c.ReceiveBlock()
			require.NoError(t, err)
			assert.Equal(t, d, v)

		case []byte:
			v, err := c.ReceiveData()
			require.NoError(t, err)
			assert.True(t, bytes.Equal(d, v), "data [%d]byte", len(d))
		}
	}
	require.NoError(t, <-errCh)

	assert.Equal(t, cw.Stats().Sent.Load(), c.Stats().Recvd.Load())

	require.NoError(t, cw.Close())
	require.NoError(t, c.Close())
}

func TestProtocolCrossBeam(t *testing.T) {
	cw, c := Pipe()
	testProtocol(t, cw, c)
}

func TestProtocolUnix(t *testing.T) {
	cw, c, err := NewUnixPair()
	require.NoError(t, err)
	testProtocol(t, cw, c)
}

func testClose(t *testing.T, a, b *Conn) {
	errCh := make(chan error, 1)
	go func() {
		_, err := b.ReceiveData()
		errCh <- err
	}()

	// Closing one endpoint must unblock the pending receive at the
	// other endpoint.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, IsTransportError(err))
	case <-time.After(5 * time.Second):
		t.Fatal("pending receive not unblocked")
	}

	_, err := a.ReceiveUint32()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClosed))

	require.NoError(t, a.SendUint32(1))
	assert.Error(t, a.Flush())

	b.Close()
}

func TestCloseCrossBeam(t *testing.T) {
	a, b := NewCrossBeam()
	testClose(t, a, b)
}

func TestCloseUnix(t *testing.T) {
	a, b, err := NewUnixPair()
	require.NoError(t, err)
	testClose(t, a, b)
}

func TestCloseLocalPending(t *testing.T) {
	a, b := NewCrossBeam()
	defer b.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := a.ReceiveData()
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.Close())

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(5 * time.Second):
		t.Fatal("pending receive not unblocked")
	}
}

func TestCrossBeamDrain(t *testing.T) {
	a, b := newCrossBeamLink()

	// Data written before close remains readable.
	n, err := a.Write([]byte("final"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, a.Close())

	_, err = a.Write([]byte("more"))
	assert.Error(t, err)

	buf := make([]byte, 3)
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("fin"), buf[:n])
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("al"), buf[:n])

	_, err = b.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestFrameTooLarge(t *testing.T) {
	a, b := NewCrossBeam()
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.SendUint32(MaxFrameSize+1))
	require.NoError(t, a.Flush())

	_, err := b.ReceiveData()
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
}

// slowStream delays writes to the wrapped stream.
type slowStream struct {
	io.ReadWriteCloser
	delay time.Duration
}

func (s *slowStream) Write(p []byte) (int, error) {
	time.Sleep(s.delay)
	return s.ReadWriteCloser.Write(p)
}

func TestCloseDeliversFlushed(t *testing.T) {
	a, b := newCrossBeamLink()
	conn := NewConn(&slowStream{
		ReadWriteCloser: a,
		delay:           50 * time.Millisecond,
	})
	peer := NewConn(b)
	defer peer.Close()

	// Flush returns when the writer takes the buffer. Close must
	// still deliver it before closing the stream.
	require.NoError(t, conn.SendData([]byte("final message")))
	require.NoError(t, conn.Flush())
	require.NoError(t, conn.Close())

	data, err := peer.ReceiveData()
	require.NoError(t, err)
	assert.Equal(t, []byte("final message"), data)

	_, err = peer.ReceiveData()
	assert.True(t, IsTransportError(err))
}

// stuckStream blocks writes until the stream is closed.
type stuckStream struct {
	io.ReadWriteCloser
	closed chan struct{}
	once   sync.Once
}

func (s *stuckStream) Write(p []byte) (int, error) {
	<-s.closed
	return 0, io.ErrClosedPipe
}

func (s *stuckStream) Close() error {
	s.once.Do(func() {
		close(s.closed)
	})
	return s.ReadWriteCloser.Close()
}

func TestCloseStuckWriter(t *testing.T) {
	a, b := newCrossBeamLink()
	defer b.Close()
	conn := NewConn(&stuckStream{
		ReadWriteCloser: a,
		closed:          make(chan struct{}),
	})

	require.NoError(t, conn.SendData([]byte("never read")))
	require.NoError(t, conn.Flush())

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(drainTimeout + 5*time.Second):
		t.Fatal("close blocked on writer")
	}
}
