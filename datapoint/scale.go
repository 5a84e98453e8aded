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

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Scale is the linear mapping between an engineering value and its
// fixed-width unsigned wire integer: wire = round((x - Addition) / Ratio).
type Scale struct {
	Ratio    float64
	Addition float64
	Width    int // 1, 2 or 4 bytes, big-endian on the wire
}

func (s Scale) check() error {
	switch s.Width {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: width %d", ErrInvalidScale, s.Width)
	}
	if s.Ratio <= 0 || math.IsNaN(s.Ratio) || math.IsInf(s.Ratio, 0) {
		return fmt.Errorf("%w: ratio %v", ErrInvalidScale, s.Ratio)
	}
	return nil
}

// MaxWire returns the largest wire integer for the width.
func (s Scale) MaxWire() uint32 {
	if s.Width >= 4 {
		return math.MaxUint32
	}
	return uint32(1)<<(8*s.Width) - 1
}

// Min returns the smallest representable engineering value.
func (s Scale) Min() float64 {
	return s.Addition
}

// Max returns the largest representable engineering value.
func (s Scale) Max() float64 {
	return s.Decode(s.MaxWire())
}

// Encode converts x to its wire integer, clamped to the width.
func (s Scale) Encode(x float64) uint32 {
	w := math.Round((x - s.Addition) / s.Ratio)
	switch {
	case math.IsNaN(w) || w <= 0:
		return 0
	case w >= float64(s.MaxWire()):
		return s.MaxWire()
	default:
		return uint32(w)
	}
}

// Decode converts a wire integer back to an engineering value.
func (s Scale) Decode(w uint32) float64 {
	return float64(w)*s.Ratio + s.Addition
}

// Quantize returns the representable value nearest to x.
func (s Scale) Quantize(x float64) float64 {
	return s.Decode(s.Encode(x))
}

// Put writes x into buf[:Width] in big-endian order.
func (s Scale) Put(buf []byte, x float64) {
	w := s.Encode(x)
	switch s.Width {
	case 1:
		buf[0] = byte(w)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(w))
	default:
		binary.BigEndian.PutUint32(buf, w)
	}
}

// Get reads an engineering value from buf[:Width].
func (s Scale) Get(buf []byte) float64 {
	var w uint32
	switch s.Width {
	case 1:
		w = uint32(buf[0])
	case 2:
		w = uint32(binary.BigEndian.Uint16(buf))
	default:
		w = binary.BigEndian.Uint32(buf)
	}
	return s.Decode(w)
}
