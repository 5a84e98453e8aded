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

package gizwits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

func TestEngine_SetMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
		mode    Mode
		cmd     byte
	}{
		{name: "reset", mode: ModeReset, cmd: frame.CmdSetDefault},
		{name: "softap", mode: ModeSoftAP, cmd: frame.CmdWiFiConfig, payload: []byte{0x01}},
		{name: "airlink", mode: ModeAirLink, cmd: frame.CmdWiFiConfig, payload: []byte{0x02}},
		{name: "production test", mode: ModeProductionTest, cmd: frame.CmdProductionTest},
		{name: "bind window", mode: ModeBindWindow, cmd: frame.CmdEnableBindWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)

			require.NoError(t, h.engine.SetMode(tt.mode))
			assert.True(t, h.engine.Pending())

			parsed := h.transport.Parsed()
			require.Len(t, parsed, 1)
			assert.Equal(t, tt.cmd, parsed[0].Cmd)
			if tt.payload == nil {
				assert.Empty(t, parsed[0].Payload)
			} else {
				assert.Equal(t, tt.payload, parsed[0].Payload)
			}

			require.NoError(t, h.poll())
			assert.False(t, h.engine.Pending())
		})
	}
}

func TestEngine_SetModeInvalid(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.ErrorIs(t, h.engine.SetMode(Mode(9)), ErrInvalidParameter)
	assert.Zero(t, h.transport.Count())
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for m := ModeReset; m <= ModeBindWindow; m++ {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("turbo")
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
