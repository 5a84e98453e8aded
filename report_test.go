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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

func TestReport_NoChangeNoReport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for range 10 {
		h.clock.Advance(1000)
		require.NoError(t, h.poll())
	}
	assert.Zero(t, h.transport.Count())
}

func TestReport_DiscreteChangeImmediate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.current.Set("mode", 2))
	require.NoError(t, h.poll())

	reports := h.module.ReceivedCmd(frame.CmdReportP0)
	require.Len(t, reports, 1)
	assert.Equal(t, byte(frame.ActionReportStatus), reports[0].Payload[0])
	assert.True(t, h.engine.LastReported().Equal(h.current))
	assert.Equal(t, uint64(1), h.engine.Stats().Reports)
}

func TestReport_NoisyChangeRateLimited(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	// Sensor jitters every 100 ms for 7 seconds
	for i := range 70 {
		h.clock.Advance(100)
		require.NoError(t, h.current.Set("temperature", 20+float64(i%5)*0.1))
		require.NoError(t, h.poll())
	}

	reports := h.module.ReceivedCmd(frame.CmdReportP0)
	assert.Len(t, reports, 1, "only one report inside one interval")
}

func TestReport_NoisyChangeAfterInterval(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.clock.Advance(1000)
	require.NoError(t, h.current.Set("temperature", 21.5))
	require.NoError(t, h.poll())
	assert.Zero(t, h.transport.Count(), "interval has not elapsed since start")

	h.clock.Advance(4999)
	require.NoError(t, h.poll())
	assert.Zero(t, h.transport.Count())

	h.clock.Advance(1)
	require.NoError(t, h.poll())
	assert.Len(t, h.module.ReceivedCmd(frame.CmdReportP0), 1)

	got, err := h.engine.LastReported().Get("temperature")
	require.NoError(t, err)
	assert.InDelta(t, 21.5, got, 1e-9)
}

func TestReport_DiscreteAlongsideNoisy(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.current.Set("temperature", 30))
	require.NoError(t, h.current.SetBool("fault", true))
	require.NoError(t, h.poll())

	reports := h.module.ReceivedCmd(frame.CmdReportP0)
	require.Len(t, reports, 1)
	status, err := h.engine.Schema().EncodeStatus(h.current)
	require.NoError(t, err)
	assert.Equal(t, status, reports[0].Payload[1:], "the report carries every current value")
}

func TestReport_Periodic(t *testing.T) {
	t.Parallel()
	h := newHarness(t, WithPeriodicReport(time.Minute))

	h.clock.Advance(59_999)
	require.NoError(t, h.poll())
	assert.Zero(t, h.transport.Count())

	h.clock.Advance(1)
	require.NoError(t, h.poll())
	assert.Len(t, h.module.ReceivedCmd(frame.CmdReportP0), 1)
	require.NoError(t, h.poll())
	assert.False(t, h.engine.Pending())

	h.clock.Advance(60_000)
	require.NoError(t, h.poll())
	require.NoError(t, h.poll())
	assert.Len(t, h.module.ReceivedCmd(frame.CmdReportP0), 2)
}

func TestReport_FailedSendRetriedNextCycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.transport.SetWriteError(errors.New("unplugged"))
	require.NoError(t, h.current.SetBool("power", true))

	err := h.poll()
	require.ErrorIs(t, err, ErrTransportWrite)
	assert.False(t, h.engine.LastReported().Equal(h.current))
	assert.False(t, h.engine.Pending())

	h.transport.SetWriteError(nil)
	require.NoError(t, h.poll())
	assert.True(t, h.engine.LastReported().Equal(h.current))
	assert.Len(t, h.module.ReceivedCmd(frame.CmdReportP0), 1)
}
