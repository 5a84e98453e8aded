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

import "errors"

// Data-point errors
var (
	ErrInvalidSchema   = errors.New("invalid data-point schema")
	ErrInvalidBitField = errors.New("invalid bit field")
	ErrInvalidScale    = errors.New("invalid scale")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrUnknownField    = errors.New("unknown data point")
	ErrSchemaMismatch  = errors.New("snapshot belongs to a different schema")
	ErrInvalidPayload  = errors.New("invalid control payload")
)
