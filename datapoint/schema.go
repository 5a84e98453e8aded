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

// Package datapoint describes application data points and their compact
// wire encoding.
//
// A Schema lists the data points of a product in declaration order. Each
// point is a Bool, an Enum (an unsigned integer a few bits wide) or a Value
// (a linearly scaled number carried as a 1, 2 or 4 byte big-endian
// integer). Writable points can be set by the remote side; read-only
// points are only reported.
//
// The status buffer sent in reports is laid out as
//
//	writable bits | writable values | read-only bits | read-only values
//
// Bit buffers are packed LSB-first in declaration order and byte-reversed
// on the wire. A control payload is the attribute flag bitmap (one bit per
// writable point, same bit order) followed by the writable bits and
// writable values; only points whose flag is set are applied.
package datapoint

import (
	"fmt"
	"math"
)

// Kind selects the wire representation of a data point.
type Kind int

const (
	// KindBool is a single bit.
	KindBool Kind = iota
	// KindEnum is an unsigned integer of Field.Bits bits.
	KindEnum
	// KindValue is a scaled number of Field.Width bytes.
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindValue:
		return "value"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field declares one data point.
type Field struct {
	Name     string
	Kind     Kind
	Bits     int     // KindEnum only, 1..32
	Width    int     // KindValue only, 1, 2 or 4
	Ratio    float64 // KindValue only, 0 means 1
	Addition float64 // KindValue only
	Writable bool
	Noisy    bool // Changes are rate limited by the report policy
}

func (f Field) isBits() bool {
	return f.Kind == KindBool || f.Kind == KindEnum
}

func (f Field) bitLen() int {
	if f.Kind == KindBool {
		return 1
	}
	return f.Bits
}

// Scale returns the wire scaling of a KindValue field.
func (f Field) Scale() Scale {
	ratio := f.Ratio
	if ratio == 0 {
		ratio = 1
	}
	return Scale{Ratio: ratio, Addition: f.Addition, Width: f.Width}
}

type placement struct {
	bits     BitField // Within the writable or read-only bit buffer
	offset   int      // Byte offset of a value within the status buffer
	flag     int      // Attribute flag index, -1 when read-only
	writable bool
}

// Schema is an immutable, validated list of fields with their layout.
type Schema struct {
	index      map[string]int
	fields     []Field
	placements []placement
	writable   []int // Field indices in flag order
	wBitLen    int
	wValueLen  int
	rBitLen    int
	rValueLen  int
	flagLen    int
}

// NewSchema validates fields and computes the status layout.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	s := &Schema{
		index:      make(map[string]int, len(fields)),
		fields:     append([]Field(nil), fields...),
		placements: make([]placement, len(fields)),
	}

	var wBits, rBits int
	for i, f := range s.fields {
		if err := validateField(f); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		s.index[f.Name] = i

		p := placement{flag: -1, writable: f.Writable}
		if f.Writable {
			p.flag = len(s.writable)
			s.writable = append(s.writable, i)
		}
		switch {
		case f.isBits() && f.Writable:
			p.bits = bitFieldAt(wBits, f.bitLen())
			wBits += f.bitLen()
		case f.isBits():
			p.bits = bitFieldAt(rBits, f.bitLen())
			rBits += f.bitLen()
		case f.Writable:
			p.offset = s.wValueLen
			s.wValueLen += f.Width
		default:
			p.offset = s.rValueLen
			s.rValueLen += f.Width
		}
		s.placements[i] = p
	}

	s.wBitLen = (wBits + 7) / 8
	s.rBitLen = (rBits + 7) / 8
	s.flagLen = (len(s.writable) + 7) / 8

	// Value offsets were relative to their section
	for i, f := range s.fields {
		if f.isBits() {
			continue
		}
		if f.Writable {
			s.placements[i].offset += s.wBitLen
		} else {
			s.placements[i].offset += s.wBitLen + s.wValueLen + s.rBitLen
		}
	}
	return s, nil
}

func validateField(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrInvalidSchema)
	}
	switch f.Kind {
	case KindBool:
	case KindEnum:
		if f.Bits < 1 || f.Bits > 32 {
			return fmt.Errorf("%w: %q enum width %d", ErrInvalidSchema, f.Name, f.Bits)
		}
	case KindValue:
		if err := f.Scale().check(); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchema, f.Name, err)
		}
	default:
		return fmt.Errorf("%w: %q has %v", ErrInvalidSchema, f.Name, f.Kind)
	}
	return nil
}

// Fields returns a copy of the declared fields.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// StatusLen is the size of an encoded status buffer.
func (s *Schema) StatusLen() int {
	return s.wBitLen + s.wValueLen + s.rBitLen + s.rValueLen
}

// ControlLen is the size of a control payload after the action byte.
func (s *Schema) ControlLen() int {
	return s.flagLen + s.wBitLen + s.wValueLen
}

// WritableCount returns the number of writable fields.
func (s *Schema) WritableCount() int {
	return len(s.writable)
}

// Position returns the bit field of a Bool or Enum point within its bit
// buffer. ok is false for values and unknown names.
func (s *Schema) Position(name string) (BitField, bool) {
	i, ok := s.index[name]
	if !ok || !s.fields[i].isBits() {
		return BitField{}, false
	}
	return s.placements[i].bits, true
}

// checkValue validates v against field i.
func (s *Schema) checkValue(i int, v float64) error {
	f := s.fields[i]
	if math.IsNaN(v) {
		return fmt.Errorf("%w: %q = NaN", ErrValueOutOfRange, f.Name)
	}
	if f.isBits() {
		limit := s.placements[i].bits.Max()
		if v < 0 || v > float64(limit) || v != float64(uint32(v)) {
			return fmt.Errorf("%w: %q = %v, want integer 0..%d", ErrValueOutOfRange, f.Name, v, limit)
		}
		return nil
	}
	sc := f.Scale()
	if v < sc.Min() || v > sc.Max() {
		return fmt.Errorf("%w: %q = %v, want %v..%v", ErrValueOutOfRange, f.Name, v, sc.Min(), sc.Max())
	}
	return nil
}
