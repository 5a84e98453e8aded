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
	"fmt"

	"github.com/golang/glog"
)

// ackTracker holds the single frame awaiting acknowledgment. Tracking a
// new frame replaces the previous one.
type ackTracker struct {
	buf     []byte
	sentAt  uint32
	retries int
	cmd     byte
	active  bool
}

func (a *ackTracker) track(raw []byte, now uint32) {
	a.buf = append(a.buf[:0], raw...)
	a.cmd = raw[4]
	a.sentAt = now
	a.retries = 0
	a.active = true
}

func (a *ackTracker) clear() {
	a.buf = a.buf[:0]
	a.retries = 0
	a.active = false
}

// acknowledge clears the tracker when ackCmd answers the pending frame.
func (a *ackTracker) acknowledge(ackCmd byte) bool {
	if !a.active || ackCmd != a.cmd+1 {
		return false
	}
	a.clear()
	return true
}

// checkAck resends the pending frame once its timeout has elapsed. Once
// the last permitted retransmission has gone out, the next cycle restarts
// the device without waiting for another timeout.
func (e *Engine) checkAck() error {
	if !e.ack.active {
		return nil
	}
	now := e.clock.NowMs()
	timedOut := elapsed(now, e.ack.sentAt) > millis(e.config.AckTimeout)

	if e.ack.retries >= e.config.MaxRetries && (e.ack.retries > 0 || timedOut) {
		return e.restart(fmt.Errorf("%w for cmd 0x%02X after %d retransmissions",
			ErrNoACK, e.ack.cmd, e.ack.retries))
	}
	if !timedOut {
		return nil
	}

	e.ack.retries++
	e.ack.sentAt = now
	e.resent++
	glog.Warningf("gizwits: no ack for cmd 0x%02X, retransmission %d/%d",
		e.ack.cmd, e.ack.retries, e.config.MaxRetries)
	if err := e.write("retransmit", e.ack.buf); err != nil {
		glog.Warningf("gizwits: %v", err)
	}
	return nil
}
