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

// Package frame provides frame manipulation and protocol constants for the
// MCU to Wi-Fi module serial link
package frame

// Frame markers
const (
	Sync     = 0xFF // Both sync bytes
	Stuffing = 0x55 // Inserted after every 0xFF data byte on the wire
)

// Frame size limits
const (
	HeaderLength    = 8    // sync(2) + len(2) + cmd + sn + flags(2)
	MinLengthField  = 5    // cmd + sn + flags(2) + sum
	MaxFrameLength  = 1024 // Largest accepted frame including sync and checksum
	LengthFieldSize = 4    // Bytes on the wire not counted by the length field (sync + len)
)

// Flag values carried in Flags[1]
const (
	FlagNone      = 0x00
	FlagSubDevice = 0x01 // Payload is prefixed by didLen + did
)

// Command codes. Acknowledgments are always the request code + 1.
const (
	CmdGetDeviceInfo    = 0x01
	AckGetDeviceInfo    = 0x02
	CmdIssuedP0         = 0x03
	AckIssuedP0         = 0x04
	CmdReportP0         = 0x05
	AckReportP0         = 0x06
	CmdHeartbeat        = 0x07
	AckHeartbeat        = 0x08
	CmdWiFiConfig       = 0x09
	AckWiFiConfig       = 0x0A
	CmdSetDefault       = 0x0B
	AckSetDefault       = 0x0C
	CmdWiFiStatus       = 0x0D
	AckWiFiStatus       = 0x0E
	CmdMCUReboot        = 0x0F
	AckMCUReboot        = 0x10
	CmdErrorPackage     = 0x11
	AckErrorPackage     = 0x12
	CmdProductionTest   = 0x13
	AckProductionTest   = 0x14
	CmdEnableBindWindow = 0x15
	AckEnableBindWindow = 0x16
	CmdGetNetworkTime   = 0x17
	AckGetNetworkTime   = 0x18
	CmdGetModuleInfo    = 0x21
	AckGetModuleInfo    = 0x22
)

// P0 actions, the first payload byte of issued and report frames
const (
	ActionControl        = 0x01
	ActionReadStatus     = 0x02
	ActionReadStatusAck  = 0x03
	ActionReportStatus   = 0x04
	ActionW2DTransparent = 0x05
	ActionD2WTransparent = 0x06
)

// Error codes carried by the illegal-packet notification
const (
	ErrorCodeChecksum = 0x01
	ErrorCodeCommand  = 0x02
	ErrorCodeOther    = 0x03
)

// AckFor returns the acknowledgment command for a request command.
func AckFor(cmd byte) byte {
	return cmd + 1
}
