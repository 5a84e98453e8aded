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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-gizwits/internal/ringbuf"
)

// Config holds the timing and sizing parameters of an Engine
type Config struct {
	DeviceInfo DeviceInfo
	// AckTimeout is how long a tracked frame waits before it is resent
	AckTimeout time.Duration
	// RebootSettle is the busy-wait between acknowledging a reboot
	// request and restarting
	RebootSettle time.Duration
	// ReportInterval rate limits reports caused by noisy data points
	ReportInterval time.Duration
	// PeriodicReport forces a full report at this interval
	PeriodicReport time.Duration
	// MaxRetries is the number of retransmissions before restarting
	MaxRetries int
	// QueueCapacity sizes the receive byte queue
	QueueCapacity int
}

// DefaultConfig returns the protocol's standard timing
func DefaultConfig() *Config {
	return &Config{
		DeviceInfo:     DefaultDeviceInfo(),
		AckTimeout:     200 * time.Millisecond,
		RebootSettle:   600 * time.Millisecond,
		ReportInterval: 6 * time.Second,
		PeriodicReport: 10 * time.Minute,
		MaxRetries:     2,
		QueueCapacity:  ringbuf.DefaultCapacity,
	}
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	switch {
	case c.AckTimeout <= 0:
		return fmt.Errorf("%w: ack timeout must be positive", ErrInvalidParameter)
	case c.RebootSettle < 0:
		return fmt.Errorf("%w: reboot settle must not be negative", ErrInvalidParameter)
	case c.ReportInterval < 0:
		return fmt.Errorf("%w: report interval must not be negative", ErrInvalidParameter)
	case c.PeriodicReport <= 0:
		return fmt.Errorf("%w: periodic report must be positive", ErrInvalidParameter)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidParameter)
	case c.QueueCapacity <= 0:
		return fmt.Errorf("%w: queue capacity must be positive", ErrInvalidParameter)
	case c.QueueCapacity > ringbuf.MaxCapacity:
		return fmt.Errorf("%w: queue capacity must not exceed %d bytes", ErrInvalidParameter, ringbuf.MaxCapacity)
	}
	return c.DeviceInfo.Validate()
}

// Option is a functional option for configuring an Engine
type Option func(*Engine) error

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(e *Engine) error {
		if config == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidParameter)
		}
		cfg := *config
		e.config = &cfg
		return nil
	}
}

// WithClock sets the millisecond clock
func WithClock(clock Clock) Option {
	return func(e *Engine) error {
		if clock == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidParameter)
		}
		e.clock = clock
		return nil
	}
}

// WithRestarter sets the action taken when the link is declared dead or
// the module requests a reboot
func WithRestarter(r Restarter) Option {
	return func(e *Engine) error {
		if r == nil {
			return fmt.Errorf("%w: nil restarter", ErrInvalidParameter)
		}
		e.restarter = r
		return nil
	}
}

// WithEventHandler sets the receiver of event batches
func WithEventHandler(h EventHandler) Option {
	return func(e *Engine) error {
		e.handler = h
		return nil
	}
}

// WithAckTimeout sets how long a tracked frame waits before it is resent
func WithAckTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		e.config.AckTimeout = timeout
		return nil
	}
}

// WithMaxRetries sets the number of retransmissions before restarting
func WithMaxRetries(retries int) Option {
	return func(e *Engine) error {
		e.config.MaxRetries = retries
		return nil
	}
}

// WithRebootSettle sets the delay between a reboot acknowledgment and the restart
func WithRebootSettle(settle time.Duration) Option {
	return func(e *Engine) error {
		e.config.RebootSettle = settle
		return nil
	}
}

// WithReportInterval sets the minimum spacing of reports caused by noisy data points
func WithReportInterval(interval time.Duration) Option {
	return func(e *Engine) error {
		e.config.ReportInterval = interval
		return nil
	}
}

// WithPeriodicReport sets the interval of forced full reports
func WithPeriodicReport(period time.Duration) Option {
	return func(e *Engine) error {
		e.config.PeriodicReport = period
		return nil
	}
}

// WithQueueCapacity sets the receive queue size in bytes
func WithQueueCapacity(capacity int) Option {
	return func(e *Engine) error {
		e.config.QueueCapacity = capacity
		return nil
	}
}

// WithDeviceInfo sets the identity sent in the device info reply
func WithDeviceInfo(info DeviceInfo) Option {
	return func(e *Engine) error {
		e.config.DeviceInfo = info
		return nil
	}
}
