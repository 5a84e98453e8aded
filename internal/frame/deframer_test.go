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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	data []byte
}

func (s *sliceSource) Pop() (byte, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	b := s.data[0]
	s.data = s.data[1:]
	return b, true
}

func mustBytes(t *testing.T, f Frame) []byte {
	t.Helper()
	raw, err := f.Bytes()
	require.NoError(t, err)
	return raw
}

func TestStuff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
		want []byte
	}{
		{
			name: "sync bytes untouched",
			raw:  []byte{0xFF, 0xFF, 0x00, 0x05},
			want: []byte{0xFF, 0xFF, 0x00, 0x05},
		},
		{
			name: "data 0xFF escaped",
			raw:  []byte{0xFF, 0xFF, 0x00, 0xFF, 0x01},
			want: []byte{0xFF, 0xFF, 0x00, 0xFF, 0x55, 0x01},
		},
		{
			name: "consecutive data 0xFF",
			raw:  []byte{0xFF, 0xFF, 0xFF, 0xFF},
			want: []byte{0xFF, 0xFF, 0xFF, 0x55, 0xFF, 0x55},
		},
		{
			name: "trailing 0xFF",
			raw:  []byte{0xFF, 0xFF, 0x01, 0xFF},
			want: []byte{0xFF, 0xFF, 0x01, 0xFF, 0x55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Stuff(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, Unstuff(got))
		})
	}
}

func TestDeframer_RoundTrip(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		{},
		{0x00},
		{0xFF},
		{0xFF, 0x55},
		{0x55, 0xFF, 0xFF, 0x55},
		{0x01, 0x02, 0xFF, 0xFF, 0xFF, 0x03},
		make([]byte, 200),
	}

	for i, payload := range payloads {
		raw := mustBytes(t, Frame{Cmd: CmdReportP0, Seq: byte(i), Payload: payload})
		src := &sliceSource{data: Stuff(raw)}

		d := NewDeframer()
		got, err := d.Next(src)
		require.NoError(t, err, "payload %d", i)
		assert.Equal(t, raw, got, "payload %d", i)

		parsed, err := Parse(got)
		require.NoError(t, err)
		assert.Equal(t, len(payload), len(parsed.Payload))
		if len(payload) > 0 {
			assert.Equal(t, payload, parsed.Payload)
		}
	}
}

func TestDeframer_ByteAtATime(t *testing.T) {
	t.Parallel()

	raw := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 3})
	wire := Stuff(raw)
	d := NewDeframer()

	src := &sliceSource{}
	_, err := d.Next(src)
	require.ErrorIs(t, err, ErrQueueEmpty)

	for i, b := range wire {
		src.data = append(src.data, b)
		got, err := d.Next(src)
		if i < len(wire)-1 {
			require.ErrorIs(t, err, ErrIncomplete, "byte %d", i)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}
}

func TestDeframer_BackToBack(t *testing.T) {
	t.Parallel()

	first := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 1})
	second := mustBytes(t, Frame{Cmd: CmdWiFiStatus, Seq: 2, Payload: []byte{0xFF, 0x01}})
	src := &sliceSource{data: append(Stuff(first), Stuff(second)...)}

	d := NewDeframer()
	got, err := d.Next(src)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.NotEmpty(t, src.data, "second frame must stay queued")

	got, err = d.Next(src)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = d.Next(src)
	require.ErrorIs(t, err, ErrQueueEmpty)
	assert.Equal(t, uint64(2), d.Stats().Frames)
}

func TestDeframer_LeadingGarbage(t *testing.T) {
	t.Parallel()

	raw := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 9})
	wire := append([]byte{0x00, 0x55, 0xFF, 0x12, 0x34}, Stuff(raw)...)

	d := NewDeframer()
	got, err := d.Next(&sliceSource{data: wire})
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestDeframer_Resync(t *testing.T) {
	t.Parallel()

	partial := Stuff(mustBytes(t, Frame{Cmd: CmdIssuedP0, Seq: 1, Payload: []byte{0x01, 0x02, 0x03, 0x04}}))
	partial = partial[:len(partial)-3]
	full := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 2})

	tests := []struct {
		name    string
		partial []byte
	}{
		{name: "inside payload", partial: partial},
		{name: "inside header", partial: partial[:5]},
		{name: "right after sync", partial: partial[:2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wire := append(append([]byte(nil), tt.partial...), Stuff(full)...)

			d := NewDeframer()
			got, err := d.Next(&sliceSource{data: wire})
			require.NoError(t, err)
			assert.Equal(t, full, got)
			assert.Equal(t, uint64(1), d.Stats().Resyncs)
		})
	}
}

func TestDeframer_ChecksumBitFlip(t *testing.T) {
	t.Parallel()

	raw := mustBytes(t, Frame{
		Cmd:     CmdIssuedP0,
		Seq:     0x11,
		Payload: []byte{0x01, 0x05, 0xFF, 0x00, 0x7F, 0x80},
	})

	// Every bit of cmd, sn, flags and payload
	for i := 4; i < len(raw)-1; i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), raw...)
			corrupted[i] ^= 1 << bit

			d := NewDeframer()
			got, err := d.Next(&sliceSource{data: Stuff(corrupted)})
			require.Nil(t, got, "byte %d bit %d accepted", i, bit)
			require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d bit %d", i, bit)
			assert.Equal(t, uint64(1), d.Stats().ChecksumErrors)
		}
	}
}

func TestDeframer_RecoversAfterChecksumError(t *testing.T) {
	t.Parallel()

	bad := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 1})
	bad[len(bad)-1]++
	good := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 2})
	src := &sliceSource{data: append(Stuff(bad), Stuff(good)...)}

	d := NewDeframer()
	_, err := d.Next(src)
	var csErr *ChecksumError
	require.True(t, errors.As(err, &csErr))
	assert.Equal(t, byte(1), csErr.Seq)

	got, err := d.Next(src)
	require.NoError(t, err)
	assert.Equal(t, good, got)
}

func TestDeframer_DiscardsImpossibleLength(t *testing.T) {
	t.Parallel()

	good := mustBytes(t, Frame{Cmd: CmdHeartbeat, Seq: 5})
	tests := []struct {
		name   string
		prefix []byte
	}{
		{name: "length below minimum", prefix: []byte{0xFF, 0xFF, 0x00, 0x02}},
		{name: "length above maximum", prefix: []byte{0xFF, 0xFF, 0x7F, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewDeframer()
			got, err := d.Next(&sliceSource{data: append(append([]byte(nil), tt.prefix...), Stuff(good)...)})
			require.NoError(t, err)
			assert.Equal(t, good, got)
			assert.Equal(t, uint64(1), d.Stats().Discarded)
		})
	}
}
