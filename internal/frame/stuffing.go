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

// Stuff escapes a raw frame for the wire by inserting Stuffing after every
// 0xFF that follows the two sync bytes.
func Stuff(raw []byte) []byte {
	if len(raw) <= 2 {
		return append([]byte(nil), raw...)
	}
	out := make([]byte, 0, len(raw)+len(raw)/8)
	out = append(out, raw[:2]...)
	for _, b := range raw[2:] {
		out = append(out, b)
		if b == Sync {
			out = append(out, Stuffing)
		}
	}
	return out
}

// Unstuff reverses Stuff for a single wire frame.
func Unstuff(wire []byte) []byte {
	if len(wire) <= 2 {
		return append([]byte(nil), wire...)
	}
	out := make([]byte, 0, len(wire))
	out = append(out, wire[:2]...)
	prevFF := false
	for _, b := range wire[2:] {
		if prevFF && b == Stuffing {
			prevFF = false
			continue
		}
		out = append(out, b)
		prevFF = b == Sync
	}
	return out
}
