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

// CalculateChecksum returns the modulo-256 sum of data.
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// FrameChecksum computes the checksum of a complete unstuffed frame.
// The sum covers everything after the sync bytes up to, but not
// including, the trailing checksum byte.
func FrameChecksum(raw []byte) byte {
	if len(raw) < 3 {
		return 0
	}
	return CalculateChecksum(raw[2 : len(raw)-1])
}

// ValidateChecksum reports whether the trailing checksum byte of raw
// matches the frame contents.
func ValidateChecksum(raw []byte) bool {
	if len(raw) < HeaderLength+1 {
		return false
	}
	return FrameChecksum(raw) == raw[len(raw)-1]
}
