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

/*
Package gizwits implements the device side of the Gizwits serial protocol
spoken between a product's microcontroller and its Wi-Fi module.

The engine frames and validates the byte stream from the module, answers
protocol requests, decodes remote control commands into data-point
changes, keeps at most one outbound frame awaiting acknowledgment with
bounded retransmission, and decides when the device's data points must
be reported.

Features:
  - FF FF framed, 0x55 stuffed wire format with mid-frame resynchronization
  - Bit-packed Bool and Enum data points and linearly scaled numeric values
  - Report on change, rate limited reports for noisy sensors, periodic reports
  - Acknowledgment tracking with retransmission and device restart
  - Module connectivity, network time and module info events
  - Transparent payloads in both directions

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-gizwits"
	    "github.com/ZaparooProject/go-gizwits/datapoint"
	    "github.com/ZaparooProject/go-gizwits/transport/uart"
	)

	schema, err := datapoint.NewSchema(
	    datapoint.Field{Name: "power", Kind: datapoint.KindBool, Writable: true},
	    datapoint.Field{Name: "temperature", Kind: datapoint.KindValue,
	        Width: 2, Ratio: 0.1, Addition: -40, Noisy: true},
	)
	if err != nil {
	    log.Fatal(err)
	}

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	engine, err := gizwits.New(transport, schema,
	    gizwits.WithDeviceInfo(info),
	    gizwits.WithEventHandler(gizwits.EventHandlerFunc(handle)),
	)
	if err != nil {
	    log.Fatal(err)
	}
	go transport.Listen(ctx, engine)

	state := schema.NewSnapshot()
	for range time.Tick(10 * time.Millisecond) {
	    if err := engine.Poll(state); errors.Is(err, gizwits.ErrRestarted) {
	        return
	    }
	}

The polling package provides a ready-made loop that owns the snapshot.

Error Handling:

Line noise and malformed frames are answered on the wire and returned
from Poll as *ProtocolError values; they never stop the engine. Only an
unanswered frame that exhausts its retransmissions, or a reboot request
from the module, ends the engine with ErrRestarted after the configured
Restarter runs.

	if gizwits.GetErrorType(err) == gizwits.ErrorTypeTransient {
	    // Keep polling
	}

Thread Safety:

PushByte and Write may be called from a receive goroutine while another
goroutine polls. All other Engine methods must be called from the polling
goroutine.
*/
package gizwits
