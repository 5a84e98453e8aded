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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thermostatFields() []Field {
	return []Field{
		{Name: "power", Kind: KindBool, Writable: true},
		{Name: "mode", Kind: KindEnum, Bits: 3, Writable: true},
		{Name: "target", Kind: KindValue, Width: 1, Ratio: 0.5, Addition: 10, Writable: true},
		{Name: "fault", Kind: KindBool},
		{Name: "temperature", Kind: KindValue, Width: 2, Ratio: 0.1, Addition: -40, Noisy: true},
	}
}

func thermostatSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(thermostatFields()...)
	require.NoError(t, err)
	return s
}

func TestNewSchema_Layout(t *testing.T) {
	t.Parallel()

	s := thermostatSchema(t)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 3, s.WritableCount())
	assert.Equal(t, 5, s.StatusLen())
	assert.Equal(t, 3, s.ControlLen())

	pos, ok := s.Position("mode")
	require.True(t, ok)
	assert.Equal(t, BitField{ByteOffset: 0, BitOffset: 1, BitLen: 3}, pos)

	pos, ok = s.Position("fault")
	require.True(t, ok)
	assert.Equal(t, BitField{ByteOffset: 0, BitOffset: 0, BitLen: 1}, pos, "read-only bits have their own buffer")

	_, ok = s.Position("temperature")
	assert.False(t, ok)

	f, ok := s.Field("temperature")
	require.True(t, ok)
	assert.True(t, f.Noisy)
	assert.Equal(t, Scale{Ratio: 0.1, Addition: -40, Width: 2}, f.Scale())
}

func TestNewSchema_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "no fields", fields: nil},
		{name: "empty name", fields: []Field{{Kind: KindBool}}},
		{name: "duplicate", fields: []Field{{Name: "a", Kind: KindBool}, {Name: "a", Kind: KindBool}}},
		{name: "enum without width", fields: []Field{{Name: "e", Kind: KindEnum}}},
		{name: "enum too wide", fields: []Field{{Name: "e", Kind: KindEnum, Bits: 33}}},
		{name: "value width", fields: []Field{{Name: "v", Kind: KindValue, Width: 3}}},
		{name: "negative ratio", fields: []Field{{Name: "v", Kind: KindValue, Width: 2, Ratio: -0.1}}},
		{name: "unknown kind", fields: []Field{{Name: "x", Kind: Kind(9)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSchema(tt.fields...)
			require.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestSnapshot_SetGet(t *testing.T) {
	t.Parallel()

	s := thermostatSchema(t)
	snap := s.NewSnapshot()

	v, err := snap.Get("target")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9, "zero below range starts at the minimum")

	require.NoError(t, snap.Set("temperature", 21.26))
	v, err = snap.Get("temperature")
	require.NoError(t, err)
	assert.InDelta(t, 21.3, v, 1e-9, "values are quantized")

	require.NoError(t, snap.SetBool("power", true))
	on, err := snap.Bool("power")
	require.NoError(t, err)
	assert.True(t, on)

	tests := []struct {
		wantErr error
		name    string
		field   string
		value   float64
	}{
		{name: "unknown", field: "nope", value: 1, wantErr: ErrUnknownField},
		{name: "bool two", field: "power", value: 2, wantErr: ErrValueOutOfRange},
		{name: "enum fraction", field: "mode", value: 1.5, wantErr: ErrValueOutOfRange},
		{name: "enum too big", field: "mode", value: 8, wantErr: ErrValueOutOfRange},
		{name: "value below", field: "target", value: 9, wantErr: ErrValueOutOfRange},
		{name: "value above", field: "target", value: 138, wantErr: ErrValueOutOfRange},
		{name: "value NaN", field: "temperature", value: math.NaN(), wantErr: ErrValueOutOfRange},
		{name: "enum NaN", field: "mode", value: math.NaN(), wantErr: ErrValueOutOfRange},
		{name: "value infinite", field: "target", value: math.Inf(1), wantErr: ErrValueOutOfRange},
	}
	for _, tt := range tests {
		before := snap.Clone()
		err := snap.Set(tt.field, tt.value)
		require.ErrorIs(t, err, tt.wantErr, tt.name)
		assert.True(t, before.Equal(snap), "%s: failed set must not mutate", tt.name)
	}
}

func TestSnapshot_DiffApply(t *testing.T) {
	t.Parallel()

	s := thermostatSchema(t)
	prev := s.NewSnapshot()
	cur := prev.Clone()
	require.NoError(t, cur.Set("mode", 3))
	require.NoError(t, cur.Set("temperature", 19.5))

	changes, err := cur.Diff(prev)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "mode", changes[0].Field.Name)
	assert.Equal(t, "temperature", changes[1].Field.Name)

	require.NoError(t, prev.Apply(changes))
	assert.True(t, prev.Equal(cur))

	bad := []Change{
		{Field: Field{Name: "power"}, Value: 1},
		{Field: Field{Name: "mode"}, Value: 99},
	}
	require.ErrorIs(t, prev.Apply(bad), ErrValueOutOfRange)
	on, _ := prev.Bool("power")
	assert.False(t, on, "apply is all or nothing")

	other, err := NewSchema(Field{Name: "x", Kind: KindBool})
	require.NoError(t, err)
	_, err = cur.Diff(other.NewSnapshot())
	require.ErrorIs(t, err, ErrSchemaMismatch)
	require.ErrorIs(t, cur.CopyFrom(other.NewSnapshot()), ErrSchemaMismatch)
}
