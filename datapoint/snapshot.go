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

// Change is a new value for one data point.
type Change struct {
	Field Field
	Value float64
}

// Snapshot holds one value per schema field. Values of KindValue fields
// are stored quantized to their wire resolution.
type Snapshot struct {
	schema *Schema
	values []float64
}

// NewSnapshot returns a snapshot with every field at its zero value, or
// the nearest representable value when zero is out of range.
func (s *Schema) NewSnapshot() *Snapshot {
	snap := &Snapshot{schema: s, values: make([]float64, len(s.fields))}
	for i, f := range s.fields {
		if f.Kind == KindValue {
			snap.values[i] = f.Scale().Quantize(0)
		}
	}
	return snap
}

// Schema returns the schema the snapshot was created from.
func (s *Snapshot) Schema() *Schema {
	return s.schema
}

func (s *Snapshot) lookup(name string) (int, error) {
	i, ok := s.schema.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return i, nil
}

func (s *Snapshot) set(i int, v float64) error {
	if err := s.schema.checkValue(i, v); err != nil {
		return err
	}
	if f := s.schema.fields[i]; f.Kind == KindValue {
		v = f.Scale().Quantize(v)
	}
	s.values[i] = v
	return nil
}

// Set assigns a value. Out of range values are rejected and leave the
// snapshot unchanged.
func (s *Snapshot) Set(name string, v float64) error {
	i, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.set(i, v)
}

// SetBool assigns a Bool field.
func (s *Snapshot) SetBool(name string, b bool) error {
	v := 0.0
	if b {
		v = 1
	}
	return s.Set(name, v)
}

// Get returns the value of a field.
func (s *Snapshot) Get(name string) (float64, error) {
	i, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return s.values[i], nil
}

// Bool returns a field as a boolean.
func (s *Snapshot) Bool(name string) (bool, error) {
	v, err := s.Get(name)
	return v != 0, err
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{schema: s.schema, values: append([]float64(nil), s.values...)}
}

// CopyFrom overwrites s with the values of src.
func (s *Snapshot) CopyFrom(src *Snapshot) error {
	if src.schema != s.schema {
		return ErrSchemaMismatch
	}
	copy(s.values, src.values)
	return nil
}

// Equal reports whether both snapshots share a schema and hold the same values.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if o == nil || o.schema != s.schema {
		return false
	}
	for i, v := range s.values {
		if o.values[i] != v {
			return false
		}
	}
	return true
}

// Diff lists the fields whose value in s differs from prev, in schema order.
func (s *Snapshot) Diff(prev *Snapshot) ([]Change, error) {
	if prev.schema != s.schema {
		return nil, ErrSchemaMismatch
	}
	var changes []Change
	for i, v := range s.values {
		if prev.values[i] != v {
			changes = append(changes, Change{Field: s.schema.fields[i], Value: v})
		}
	}
	return changes, nil
}

// Apply assigns every change. All changes are validated before any is
// applied.
func (s *Snapshot) Apply(changes []Change) error {
	idx := make([]int, len(changes))
	for n, c := range changes {
		i, err := s.lookup(c.Field.Name)
		if err != nil {
			return err
		}
		if err := s.schema.checkValue(i, c.Value); err != nil {
			return err
		}
		idx[n] = i
	}
	for n, c := range changes {
		_ = s.set(idx[n], c.Value)
	}
	return nil
}
