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

package gizwits

import (
	"sync/atomic"
	"time"
)

// Clock supplies a millisecond tick counter that wraps silently at 2^32.
// All intervals are computed with wrapping subtraction.
type Clock interface {
	NowMs() uint32
}

// TickClock is advanced explicitly, typically from a 1 ms timer. It is
// safe to advance from one goroutine while another reads it.
type TickClock struct {
	ms atomic.Uint32
}

// NewTickClock returns a clock starting at start.
func NewTickClock(start uint32) *TickClock {
	c := &TickClock{}
	c.ms.Store(start)
	return c
}

// Tick advances the clock by one millisecond.
func (c *TickClock) Tick() {
	c.ms.Add(1)
}

// Advance moves the clock forward by ms milliseconds.
func (c *TickClock) Advance(ms uint32) {
	c.ms.Add(ms)
}

// NowMs returns the current tick count.
func (c *TickClock) NowMs() uint32 {
	return c.ms.Load()
}

// SystemClock counts milliseconds of wall time since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock reading zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMs returns milliseconds since creation, truncated to 32 bits.
func (c *SystemClock) NowMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// elapsed is wrap-safe for intervals shorter than 2^32 ms.
func elapsed(now, since uint32) uint32 {
	return now - since
}

func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / time.Millisecond)
}
