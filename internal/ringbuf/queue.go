// go-gizwits
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-gizwits.
//
// go-gizwits is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-gizwits is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-gizwits; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package ringbuf provides the single-producer single-consumer byte queue
// that sits between the serial receive path and the protocol engine.
package ringbuf

import "sync/atomic"

// Capacity limits. DefaultCapacity is used when a non-positive capacity is
// requested; larger requests are clamped to MaxCapacity.
const (
	DefaultCapacity = 1024
	MaxCapacity     = 1 << 20
)

// Queue is a lock-free SPSC byte FIFO. Push may run concurrently with Pop,
// Len and Reset-free consumer calls, but there must be exactly one producer
// goroutine and one consumer goroutine. The producer owns tail, the consumer
// owns head.
type Queue struct {
	buf  []byte
	mask uint32
	head atomic.Uint32
	tail atomic.Uint32
}

// New returns a queue holding at least capacity bytes. The capacity is
// rounded up to a power of two.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	capacity = min(capacity, MaxCapacity)
	size := uint32(1)
	for int(size) < capacity {
		size <<= 1
	}
	return &Queue{
		buf:  make([]byte, size),
		mask: size - 1,
	}
}

// Cap returns the number of bytes the queue can hold.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Push appends b. It never blocks; it returns false and drops b when the
// queue is full.
func (q *Queue) Push(b byte) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint32(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = b
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest byte.
func (q *Queue) Pop() (byte, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return 0, false
	}
	b := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return b, true
}

// Reset discards all queued bytes. It is a consumer operation and must not
// race with Push.
func (q *Queue) Reset() {
	q.head.Store(q.tail.Load())
}
