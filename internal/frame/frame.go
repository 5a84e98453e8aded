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
	"fmt"
)

// Frame parsing errors
var (
	ErrFrameTooShort     = errors.New("frame too short")
	ErrFrameTooLarge     = errors.New("frame exceeds maximum length")
	ErrMissingSync       = errors.New("frame does not start with sync marker")
	ErrLengthMismatch    = errors.New("declared length does not match frame size")
	ErrChecksumMismatch  = errors.New("frame checksum mismatch")
	ErrSubDeviceTooLong  = errors.New("sub-device id longer than 255 bytes")
	ErrSubDeviceTruncate = errors.New("sub-device id truncated")
)

// ChecksumError describes a frame whose trailing checksum did not match.
// It unwraps to ErrChecksumMismatch.
type ChecksumError struct {
	Cmd  byte
	Seq  byte
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("frame checksum mismatch: cmd=0x%02X sn=%d got=0x%02X want=0x%02X",
		e.Cmd, e.Seq, e.Got, e.Want)
}

func (*ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// Frame is one decoded protocol message. Cmd is the tag that selects how
// Payload is interpreted.
type Frame struct {
	SubDevice []byte // Present only when Flags[1] == FlagSubDevice
	Payload   []byte
	Flags     [2]byte
	Cmd       byte
	Seq       byte
}

// HasSubDevice reports whether the frame carries a sub-device id.
func (f *Frame) HasSubDevice() bool {
	return f.Flags[1] == FlagSubDevice
}

// LengthField returns the value of the header length field for f.
func (f *Frame) LengthField() int {
	n := MinLengthField + len(f.Payload)
	if f.HasSubDevice() {
		n += 1 + len(f.SubDevice)
	}
	return n
}

// Bytes serializes f into an unstuffed wire frame including sync bytes
// and checksum.
func (f *Frame) Bytes() ([]byte, error) {
	if f.HasSubDevice() && len(f.SubDevice) > 0xFF {
		return nil, ErrSubDeviceTooLong
	}
	length := f.LengthField()
	if length+LengthFieldSize > MaxFrameLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length+LengthFieldSize)
	}

	buf := make([]byte, 0, length+LengthFieldSize)
	buf = append(buf, Sync, Sync)
	buf = binary.BigEndian.AppendUint16(buf, uint16(length))
	buf = append(buf, f.Cmd, f.Seq, f.Flags[0], f.Flags[1])
	if f.HasSubDevice() {
		buf = append(buf, byte(len(f.SubDevice)))
		buf = append(buf, f.SubDevice...)
	}
	buf = append(buf, f.Payload...)
	buf = append(buf, 0)
	buf[len(buf)-1] = FrameChecksum(buf)
	return buf, nil
}

// Parse decodes an unstuffed wire frame. The returned frame does not alias raw.
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < HeaderLength+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(raw))
	}
	if len(raw) > MaxFrameLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(raw))
	}
	if raw[0] != Sync || raw[1] != Sync {
		return nil, ErrMissingSync
	}
	length := int(binary.BigEndian.Uint16(raw[2:4]))
	if length+LengthFieldSize != len(raw) {
		return nil, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, length+LengthFieldSize, len(raw))
	}

	f := &Frame{
		Cmd:   raw[4],
		Seq:   raw[5],
		Flags: [2]byte{raw[6], raw[7]},
	}
	if want := FrameChecksum(raw); want != raw[len(raw)-1] {
		return nil, &ChecksumError{Cmd: f.Cmd, Seq: f.Seq, Got: raw[len(raw)-1], Want: want}
	}

	body := raw[HeaderLength : len(raw)-1]
	if f.HasSubDevice() {
		if len(body) < 1 || len(body) < 1+int(body[0]) {
			return nil, ErrSubDeviceTruncate
		}
		didLen := int(body[0])
		f.SubDevice = append([]byte(nil), body[1:1+didLen]...)
		body = body[1+didLen:]
	}
	f.Payload = append([]byte(nil), body...)
	return f, nil
}
