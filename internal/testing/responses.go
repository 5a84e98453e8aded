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

// Package testing provides frame builders and a simulated Wi-Fi module
// for exercising the device engine without hardware.
package testing

import (
	"encoding/binary"

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// BuildRaw returns an unstuffed frame. It panics on frames that cannot be
// encoded, which only happens with oversize test input.
func BuildRaw(f *frame.Frame) []byte {
	raw, err := f.Bytes()
	if err != nil {
		panic(err)
	}
	return raw
}

// BuildFrame returns the stuffed wire bytes of a frame from the module.
func BuildFrame(cmd, seq byte, payload []byte) []byte {
	return frame.Stuff(BuildRaw(&frame.Frame{Cmd: cmd, Seq: seq, Payload: payload}))
}

// BuildSubDeviceFrame returns the stuffed wire bytes of a frame addressed
// to sub-device did.
func BuildSubDeviceFrame(cmd, seq byte, did, payload []byte) []byte {
	return frame.Stuff(BuildRaw(&frame.Frame{
		Cmd:       cmd,
		Seq:       seq,
		Flags:     [2]byte{0x00, frame.FlagSubDevice},
		SubDevice: did,
		Payload:   payload,
	}))
}

// BuildHeartbeat builds a heartbeat request
func BuildHeartbeat(seq byte) []byte {
	return BuildFrame(frame.CmdHeartbeat, seq, nil)
}

// BuildDeviceInfoRequest builds a device info request
func BuildDeviceInfoRequest(seq byte) []byte {
	return BuildFrame(frame.CmdGetDeviceInfo, seq, nil)
}

// BuildControl builds a control command carrying an encoded control payload
func BuildControl(seq byte, control []byte) []byte {
	return BuildFrame(frame.CmdIssuedP0, seq, append([]byte{frame.ActionControl}, control...))
}

// BuildReadStatus builds a read-status request
func BuildReadStatus(seq byte) []byte {
	return BuildFrame(frame.CmdIssuedP0, seq, []byte{frame.ActionReadStatus})
}

// BuildTransparent builds an opaque payload pushed to the device
func BuildTransparent(seq byte, data []byte) []byte {
	return BuildFrame(frame.CmdIssuedP0, seq, append([]byte{frame.ActionW2DTransparent}, data...))
}

// BuildModuleStatus builds a module status push carrying word
func BuildModuleStatus(seq byte, word uint16) []byte {
	return BuildFrame(frame.CmdWiFiStatus, seq, binary.BigEndian.AppendUint16(nil, word))
}

// BuildReboot builds a reboot request
func BuildReboot(seq byte) []byte {
	return BuildFrame(frame.CmdMCUReboot, seq, nil)
}

// BuildAck builds the acknowledgment for a device request cmd
func BuildAck(cmd, seq byte) []byte {
	return BuildFrame(frame.AckFor(cmd), seq, nil)
}

// BuildCorrupt returns the stuffed wire bytes of f with its checksum
// flipped.
func BuildCorrupt(f *frame.Frame) []byte {
	raw := BuildRaw(f)
	raw[len(raw)-1] ^= 0x01
	return frame.Stuff(raw)
}
