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
	"sync"

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// MockTransport records every frame written to it. It can inject write
// errors and forward frames to a peer callback.
type MockTransport struct {
	writeErr error
	OnWrite  func(raw []byte)
	frames   [][]byte
	mu       sync.Mutex
	closed   bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Write records a copy of the raw frame
func (m *MockTransport) Write(raw []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrTransportClosed
	}
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return 0, err
	}
	m.frames = append(m.frames, append([]byte(nil), raw...))
	onWrite := m.OnWrite
	m.mu.Unlock()

	if onWrite != nil {
		onWrite(raw)
	}
	return len(raw), nil
}

// SetWriteError makes subsequent writes fail with err; nil clears it
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Frames returns copies of all recorded frames
func (m *MockTransport) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames))
	for i, f := range m.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Parsed returns the recorded frames decoded. Frames that do not parse
// are skipped.
func (m *MockTransport) Parsed() []*frame.Frame {
	var out []*frame.Frame
	for _, raw := range m.Frames() {
		if f, err := frame.Parse(raw); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of recorded frames
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Reset forgets recorded frames
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = nil
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
