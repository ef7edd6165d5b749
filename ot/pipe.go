//
// pipe.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

var (
	_ IO = &Pipe{}
)

const pipeQueueSize = 1024

// Pipe implements the IO interface with in-memory frame queues.
type Pipe struct {
	r      chan []byte
	w      chan []byte
	closed chan struct{}
	once   *sync.Once
}

// NewPipe creates a new in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	ab := make(chan []byte, pipeQueueSize)
	ba := make(chan []byte, pipeQueueSize)
	closed := make(chan struct{})
	once := new(sync.Once)

	return &Pipe{
			r:      ba,
			w:      ab,
			closed: closed,
			once:   once,
		}, &Pipe{
			r:      ab,
			w:      ba,
			closed: closed,
			once:   once,
		}
}

func (p *Pipe) send(data []byte) error {
	select {
	case p.w <- data:
		return nil
	case <-p.closed:
		return io.ErrClosedPipe
	}
}

func (p *Pipe) receive() ([]byte, error) {
	select {
	case data := <-p.r:
		return data, nil
	default:
	}
	select {
	case data := <-p.r:
		return data, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	data := make([]byte, len(val))
	copy(data, val)
	return p.send(data)
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(val))
	return p.send(buf[:])
}

// SendBlock sends a block.
func (p *Pipe) SendBlock(val Block) error {
	var buf BlockData
	val.GetData(&buf)
	return p.send(buf[:])
}

// Flush flushed any pending data in the connection.
func (p *Pipe) Flush() error {
	return nil
}

// Close closes the pipe. Both endpoints fail all subsequent
// operations.
func (p *Pipe) Close() error {
	p.once.Do(func() {
		close(p.closed)
	})
	return nil
}

// ReceiveData receives binary data.
func (p *Pipe) ReceiveData() ([]byte, error) {
	return p.receive()
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	data, err := p.receive()
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("ot: pipe: invalid uint32 frame length %d",
			len(data))
	}
	return int(binary.BigEndian.Uint32(data)), nil
}

// ReceiveBlock receives a block.
func (p *Pipe) ReceiveBlock() (Block, error) {
	var result Block
	data, err := p.receive()
	if err != nil {
		return result, err
	}
	if len(data) != 16 {
		return result, fmt.Errorf("ot: pipe: invalid block frame length %d",
			len(data))
	}
	result.SetBytes(data)
	return result, nil
}
