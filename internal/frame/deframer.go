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

package frame

import (
	"encoding/binary"
	"errors"
)

// Deframer results that are not frames
var (
	ErrQueueEmpty = errors.New("no bytes available")
	ErrIncomplete = errors.New("no complete frame yet")
)

// Source is the consumer side of a byte queue.
type Source interface {
	Pop() (byte, bool)
}

// Stats counts deframer outcomes since the last Reset.
type Stats struct {
	Frames         uint64
	ChecksumErrors uint64
	Resyncs        uint64
	Discarded      uint64 // Frames dropped for an impossible length field
}

// Deframer turns a stuffed byte stream into validated raw frames.
// Frames are returned unstuffed, sync bytes and checksum included.
//
// A Deframer is not safe for concurrent use; only the consumer side of the
// queue may call Next.
type Deframer struct {
	buf      []byte
	stats    Stats
	expected int
	active   bool
	prevFF   bool
}

// NewDeframer returns a deframer hunting for a sync marker.
func NewDeframer() *Deframer {
	return &Deframer{buf: make([]byte, 0, MaxFrameLength)}
}

// Reset drops any partial frame and clears the statistics.
func (d *Deframer) Reset() {
	d.restart()
	d.stats = Stats{}
}

// Stats returns a copy of the outcome counters.
func (d *Deframer) Stats() Stats {
	return d.stats
}

func (d *Deframer) restart() {
	d.buf = d.buf[:0]
	d.expected = 0
	d.active = false
	d.prevFF = false
}

func (d *Deframer) beginFrame() {
	if d.active {
		d.stats.Resyncs++
	}
	d.buf = append(d.buf[:0], Sync, Sync)
	d.expected = 0
	d.active = true
	d.prevFF = false
}

// Next consumes bytes from src until one frame completes or src runs dry.
// It returns the raw frame, or ErrQueueEmpty when src had nothing to read,
// ErrIncomplete when bytes were consumed without completing a frame, or a
// *ChecksumError when a complete frame failed validation. Bytes after a
// completed frame stay in src for the next call.
func (d *Deframer) Next(src Source) ([]byte, error) {
	consumed := false
	for {
		b, ok := src.Pop()
		if !ok {
			if !consumed {
				return nil, ErrQueueEmpty
			}
			return nil, ErrIncomplete
		}
		consumed = true

		if b == Sync && d.prevFF {
			d.beginFrame()
			continue
		}
		if !d.active {
			d.prevFF = b == Sync
			continue
		}
		if b == Stuffing && d.prevFF {
			d.prevFF = false
			continue
		}

		d.buf = append(d.buf, b)
		d.prevFF = b == Sync

		if d.expected == 0 && len(d.buf) == 4 {
			length := int(binary.BigEndian.Uint16(d.buf[2:4]))
			if length < MinLengthField || length+LengthFieldSize > MaxFrameLength {
				d.stats.Discarded++
				d.restart()
				continue
			}
			d.expected = length + LengthFieldSize
		}

		if d.expected > 0 && len(d.buf) == d.expected {
			return d.complete()
		}
	}
}

func (d *Deframer) complete() ([]byte, error) {
	raw := append([]byte(nil), d.buf...)
	d.restart()

	if want := FrameChecksum(raw); want != raw[len(raw)-1] {
		d.stats.ChecksumErrors++
		return nil, &ChecksumError{Cmd: raw[4], Seq: raw[5], Got: raw[len(raw)-1], Want: want}
	}
	d.stats.Frames++
	return raw, nil
}
