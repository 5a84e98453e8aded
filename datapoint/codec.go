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

// Encoder packs snapshots into wire status buffers. Its scratch bit
// buffers are cleared before every encoding. An Encoder is not safe for
// concurrent use.
type Encoder struct {
	schema *Schema
	wBits  []byte
	rBits  []byte
}

// NewEncoder returns an encoder for schema.
func NewEncoder(schema *Schema) *Encoder {
	return &Encoder{
		schema: schema,
		wBits:  make([]byte, schema.wBitLen),
		rBits:  make([]byte, schema.rBitLen),
	}
}

// Encode returns the wire status buffer for snap.
func (e *Encoder) Encode(snap *Snapshot) ([]byte, error) {
	s := e.schema
	if snap == nil || snap.schema != s {
		return nil, ErrSchemaMismatch
	}

	clear(e.wBits)
	clear(e.rBits)
	out := make([]byte, s.StatusLen())

	for i, f := range s.fields {
		p := s.placements[i]
		v := snap.values[i]
		if !f.isBits() {
			f.Scale().Put(out[p.offset:], v)
			continue
		}
		buf := e.rBits
		if p.writable {
			buf = e.wBits
		}
		if err := p.bits.Pack(buf, uint32(v)); err != nil {
			return nil, fmt.Errorf("encode %q: %w", f.Name, err)
		}
	}

	ExchangeBytes(e.wBits)
	ExchangeBytes(e.rBits)
	copy(out, e.wBits)
	copy(out[s.wBitLen+s.wValueLen:], e.rBits)
	return out, nil
}

// EncodeStatus is a one-shot Encode.
func (s *Schema) EncodeStatus(snap *Snapshot) ([]byte, error) {
	return NewEncoder(s).Encode(snap)
}

// DecodeStatus parses a wire status buffer into a new snapshot.
func (s *Schema) DecodeStatus(status []byte) (*Snapshot, error) {
	if len(status) != s.StatusLen() {
		return nil, fmt.Errorf("%w: status is %d bytes, want %d", ErrInvalidPayload, len(status), s.StatusLen())
	}

	wBits := reversed(status[:s.wBitLen])
	rStart := s.wBitLen + s.wValueLen
	rBits := reversed(status[rStart : rStart+s.rBitLen])

	snap := s.NewSnapshot()
	for i, f := range s.fields {
		p := s.placements[i]
		if !f.isBits() {
			snap.values[i] = f.Scale().Get(status[p.offset:])
			continue
		}
		buf := rBits
		if p.writable {
			buf = wBits
		}
		v, err := p.bits.Unpack(buf)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", f.Name, err)
		}
		snap.values[i] = float64(v)
	}
	return snap, nil
}

// DecodeControl parses a control payload, without its action byte, into
// the changes selected by the attribute flags. Nothing is modified; the
// payload is rejected as a whole when its length or flags are invalid.
func (s *Schema) DecodeControl(payload []byte) ([]Change, error) {
	if len(payload) != s.ControlLen() {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidPayload, len(payload), s.ControlLen())
	}

	flags := reversed(payload[:s.flagLen])
	for bit := len(s.writable); bit < s.flagLen*8; bit++ {
		if flags[bit/8]&(1<<(bit%8)) != 0 {
			return nil, fmt.Errorf("%w: reserved flag bit %d set", ErrInvalidPayload, bit)
		}
	}
	wBits := reversed(payload[s.flagLen : s.flagLen+s.wBitLen])
	values := payload[s.flagLen+s.wBitLen:]

	var changes []Change
	for flag, i := range s.writable {
		if flags[flag/8]&(1<<(flag%8)) == 0 {
			continue
		}
		f := s.fields[i]
		p := s.placements[i]
		var v float64
		if f.isBits() {
			raw, err := p.bits.Unpack(wBits)
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", f.Name, err)
			}
			v = float64(raw)
		} else {
			v = f.Scale().Get(values[p.offset-s.wBitLen:])
		}
		changes = append(changes, Change{Field: f, Value: v})
	}
	return changes, nil
}

// EncodeControl builds a control payload, without its action byte, that
// sets the named writable fields to their values in snap. With no names
// every writable field is flagged.
func (s *Schema) EncodeControl(snap *Snapshot, names ...string) ([]byte, error) {
	if snap == nil || snap.schema != s {
		return nil, ErrSchemaMismatch
	}

	selected := make(map[int]bool, len(names))
	for _, name := range names {
		i, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if !s.fields[i].Writable {
			return nil, fmt.Errorf("%w: %q is read-only", ErrInvalidPayload, name)
		}
		selected[i] = true
	}

	flags := make([]byte, s.flagLen)
	wBits := make([]byte, s.wBitLen)
	out := make([]byte, s.ControlLen())

	for flag, i := range s.writable {
		if len(names) > 0 && !selected[i] {
			continue
		}
		flags[flag/8] |= 1 << (flag % 8)
		f := s.fields[i]
		p := s.placements[i]
		if f.isBits() {
			if err := p.bits.Pack(wBits, uint32(snap.values[i])); err != nil {
				return nil, fmt.Errorf("encode %q: %w", f.Name, err)
			}
			continue
		}
		f.Scale().Put(out[s.flagLen+p.offset:], snap.values[i])
	}

	ExchangeBytes(flags)
	ExchangeBytes(wBits)
	copy(out, flags)
	copy(out[s.flagLen:], wBits)
	return out, nil
}

func reversed(b []byte) []byte {
	out := append([]byte(nil), b...)
	ExchangeBytes(out)
	return out
}
