//
// pipe_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	pipe, rPipe := NewPipe()
	done := make(chan error)

	block := Block{D0: 1, D1: 2}

	go func(pipe *Pipe) {
		defer close(done)

		val, err := pipe.ReceiveUint32()
		if err != nil {
			done <- err
			return
		}
		assert.Equal(t, 42, val)

		data, err := pipe.ReceiveData()
		if err != nil {
			done <- err
			return
		}
		assert.Equal(t, []byte("Hello, world!"), data)

		b, err := pipe.ReceiveBlock()
		if err != nil {
			done <- err
			return
		}
		assert.Equal(t, block, b)

		_, err = pipe.ReceiveUint32()
		assert.Equal(t, io.EOF, err)
	}(rPipe)

	require.NoError(t, pipe.SendUint32(42))
	require.NoError(t, pipe.SendData([]byte("Hello, world!")))
	require.NoError(t, pipe.SendBlock(block))
	require.NoError(t, pipe.Flush())

	// Closing before the consumer reads must not drop queued frames.
	require.NoError(t, pipe.Close())
	require.NoError(t, pipe.Close())

	for err := range done {
		t.Errorf("consumer failed: %v", err)
	}
	assert.Error(t, pipe.SendUint32(1))
}
