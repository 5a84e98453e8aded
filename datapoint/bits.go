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

package datapoint

import "fmt"

// BitField addresses a packed value inside a logical bit buffer. Bits are
// numbered LSB-first starting at byte 0; a field may span byte boundaries.
type BitField struct {
	ByteOffset int
	BitOffset  int
	BitLen     int
}

// bitFieldAt converts an absolute bit index into a BitField.
func bitFieldAt(bit, bitLen int) BitField {
	return BitField{ByteOffset: bit / 8, BitOffset: bit % 8, BitLen: bitLen}
}

func (f BitField) start() int {
	return f.ByteOffset*8 + f.BitOffset
}

func (f BitField) check(buf []byte) error {
	if f.BitLen < 1 || f.BitLen > 32 {
		return fmt.Errorf("%w: bit length %d", ErrInvalidBitField, f.BitLen)
	}
	if f.ByteOffset < 0 || f.BitOffset < 0 || f.BitOffset > 7 {
		return fmt.Errorf("%w: offset %d.%d", ErrInvalidBitField, f.ByteOffset, f.BitOffset)
	}
	if f.start()+f.BitLen > len(buf)*8 {
		return fmt.Errorf("%w: bits %d..%d outside %d-byte buffer",
			ErrInvalidBitField, f.start(), f.start()+f.BitLen-1, len(buf))
	}
	return nil
}

// Max returns the largest value the field can hold.
func (f BitField) Max() uint32 {
	if f.BitLen >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<f.BitLen - 1
}

// Pack writes v into buf without touching bits outside the field.
func (f BitField) Pack(buf []byte, v uint32) error {
	if err := f.check(buf); err != nil {
		return err
	}
	if v > f.Max() {
		return fmt.Errorf("%w: %d does not fit in %d bits", ErrValueOutOfRange, v, f.BitLen)
	}

	pos := f.start()
	for done := 0; done < f.BitLen; {
		idx, shift := (pos+done)/8, uint((pos+done)%8)
		n := min(8-int(shift), f.BitLen-done)
		mask := byte(1<<n-1) << shift
		chunk := byte(v>>done) & byte(1<<n-1)
		buf[idx] = buf[idx]&^mask | chunk<<shift
		done += n
	}
	return nil
}

// Unpack reads the field from buf.
func (f BitField) Unpack(buf []byte) (uint32, error) {
	if err := f.check(buf); err != nil {
		return 0, err
	}

	var v uint32
	pos := f.start()
	for done := 0; done < f.BitLen; {
		idx, shift := (pos+done)/8, uint((pos+done)%8)
		n := min(8-int(shift), f.BitLen-done)
		chunk := (buf[idx] >> shift) & byte(1<<n-1)
		v |= uint32(chunk) << done
		done += n
	}
	return v, nil
}

// ExchangeBytes reverses buf in place. Bit buffers and attribute flags are
// built in host order and reversed for the wire.
func ExchangeBytes(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
