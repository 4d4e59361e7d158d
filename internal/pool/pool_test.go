// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"bytes"
	"testing"
)

type counter struct{ n int }

func (c *counter) Reset() { c.n = 0 }

func TestPoolResetsOnPut(t *testing.T) {
	p := New(func() *counter { return &counter{} })

	c := p.Get()
	c.n = 42
	p.Put(c)
	if c.n != 0 {
		t.Errorf("Put() did not reset the value, n = %d", c.n)
	}
}

func TestBuffers(t *testing.T) {
	b := Buffers.Get()
	b.WriteString("payload")
	PutBuffer(b)
	if b.Len() != 0 {
		t.Errorf("PutBuffer() left %d bytes in the buffer", b.Len())
	}

	big := bytes.NewBuffer(make([]byte, 0, maxBufferSize+1))
	big.WriteString("x")
	PutBuffer(big)
	if big.Len() != 1 {
		t.Error("PutBuffer() reset a buffer above the retention limit")
	}
}
