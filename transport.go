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

// Transport defines the byte link to the Wi-Fi module.
// It can be implemented by a serial port or an in-memory pipe.
type Transport interface {
	// Write sends one raw frame. Implementations escape every 0xFF data
	// byte after the sync marker by appending 0x55 before it reaches the
	// wire. The returned count refers to raw frame bytes.
	Write(frame []byte) (int, error)

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// ByteSink receives bytes from the link. Engine implements it; transports
// that read from hardware push into it from their receive path.
type ByteSink interface {
	PushByte(b byte) bool
}

// Restarter performs an unconditional device restart. Restart is not
// expected to return; when it does, the engine stays halted.
type Restarter interface {
	Restart()
}

// RestartFunc adapts a function to the Restarter interface.
type RestartFunc func()

// Restart calls f.
func (f RestartFunc) Restart() {
	f()
}
