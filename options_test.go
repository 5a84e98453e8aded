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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-gizwits/internal/ringbuf"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200*time.Millisecond, cfg.AckTimeout)
	assert.Equal(t, 600*time.Millisecond, cfg.RebootSettle)
	assert.Equal(t, 6*time.Second, cfg.ReportInterval)
	assert.Equal(t, 10*time.Minute, cfg.PeriodicReport)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate func(*Config)
		name   string
	}{
		{name: "zero ack timeout", mutate: func(c *Config) { c.AckTimeout = 0 }},
		{name: "negative settle", mutate: func(c *Config) { c.RebootSettle = -time.Second }},
		{name: "negative report interval", mutate: func(c *Config) { c.ReportInterval = -1 }},
		{name: "zero periodic report", mutate: func(c *Config) { c.PeriodicReport = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }},
		{name: "zero queue", mutate: func(c *Config) { c.QueueCapacity = 0 }},
		{name: "huge queue", mutate: func(c *Config) { c.QueueCapacity = ringbuf.MaxCapacity + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)
		})
	}
}

func TestWithConfig_Copies(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxRetries = 5
	engine, err := New(NewMockTransport(), thermostatSchema(t), WithConfig(cfg))
	require.NoError(t, err)

	cfg.MaxRetries = 0
	assert.Equal(t, 5, engine.config.MaxRetries)

	_, err = New(NewMockTransport(), thermostatSchema(t), WithConfig(nil))
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = New(NewMockTransport(), thermostatSchema(t), WithClock(nil))
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = New(NewMockTransport(), thermostatSchema(t), WithRestarter(nil))
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestClock_Elapsed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(10), elapsed(20, 10))
	assert.Equal(t, uint32(20), elapsed(10, ^uint32(0)-9))
	assert.Equal(t, uint32(200), millis(200*time.Millisecond))
	assert.Zero(t, millis(-time.Second))

	c := NewTickClock(^uint32(0))
	c.Tick()
	assert.Zero(t, c.NowMs())
	c.Advance(5)
	assert.Equal(t, uint32(5), c.NowMs())
}
