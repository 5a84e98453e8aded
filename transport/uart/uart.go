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

// Package uart provides a serial port transport for the Wi-Fi module link
package uart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	gizwits "github.com/ZaparooProject/go-gizwits"
	"github.com/ZaparooProject/go-gizwits/internal/frame"
	"github.com/ZaparooProject/go-gizwits/internal/transport"
)

// Config holds the serial line parameters
type Config struct {
	// BaudRate of the module link, 9600 on every Gizwits module
	BaudRate int
	// ReadTimeout bounds each blocking read so Listen can observe cancellation
	ReadTimeout time.Duration
	// OpenTimeout keeps retrying a port that is missing or busy, which
	// happens while a USB adapter enumerates
	OpenTimeout time.Duration
	// WriteRetries is the number of extra attempts for a failed or short write
	WriteRetries int
	// RetryDelay separates write attempts
	RetryDelay time.Duration
}

// DefaultConfig returns 9600 8N1 with short timeouts
func DefaultConfig() Config {
	return Config{
		BaudRate:     9600,
		ReadTimeout:  50 * time.Millisecond,
		OpenTimeout:  2 * time.Second,
		WriteRetries: 2,
		RetryDelay:   5 * time.Millisecond,
	}
}

// Option configures a Transport
type Option func(*Config)

// WithBaudRate overrides the line speed
func WithBaudRate(baud int) Option {
	return func(c *Config) { c.BaudRate = baud }
}

// WithReadTimeout overrides the per-read timeout
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithOpenTimeout overrides how long New waits for the port to appear
func WithOpenTimeout(d time.Duration) Option {
	return func(c *Config) { c.OpenTimeout = d }
}

// WithWriteRetries overrides the number of extra write attempts
func WithWriteRetries(n int) Option {
	return func(c *Config) { c.WriteRetries = n }
}

// port is the subset of serial.Port the transport uses
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Transport writes stuffed frames to a serial port and feeds received
// bytes to the engine.
type Transport struct {
	port     port
	portName string
	config   Config
	mu       sync.Mutex // serializes writes
	closed   atomic.Bool
}

// New opens portName with 8 data bits, no parity and one stop bit.
func New(portName string, opts ...Option) (*Transport, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := transport.TimeoutRetry(config.OpenTimeout, "open "+portName,
		func() (serial.Port, bool, error) {
			p, err := serial.Open(portName, mode)
			if err == nil {
				return p, false, nil
			}
			var pe *serial.PortError
			if errors.As(err, &pe) && (pe.Code() == serial.PortNotFound || pe.Code() == serial.PortBusy) {
				return nil, true, nil
			}
			return nil, false, gizwits.NewTransportError("open", portName, err, gizwits.ErrorTypePermanent)
		})
	if err != nil {
		return nil, err
	}

	if config.ReadTimeout > 0 {
		if err := p.SetReadTimeout(config.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, gizwits.NewTransportError("set read timeout", portName, err, gizwits.ErrorTypePermanent)
		}
	}
	if err := p.ResetInputBuffer(); err != nil {
		glog.Warningf("uart: reset input buffer on %s: %v", portName, err)
	}

	glog.Infof("uart: opened %s at %d baud", portName, config.BaudRate)
	return newTransport(portName, p, config), nil
}

func newTransport(portName string, p port, config Config) *Transport {
	return &Transport{port: p, portName: portName, config: config}
}

// Write stuffs raw and writes it, retrying short and failed writes. It
// returns len(raw) on success.
func (t *Transport) Write(raw []byte) (int, error) {
	if t.closed.Load() {
		return 0, gizwits.NewTransportError("write", t.portName, gizwits.ErrTransportClosed, gizwits.ErrorTypePermanent)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wire := frame.Stuff(raw)
	var lastErr error
	_, err := transport.WithRetry(transport.RetryConfig{
		Description: "write " + t.portName,
		MaxRetries:  t.config.WriteRetries,
		RetryDelay:  t.config.RetryDelay,
		LastErr:     func() error { return lastErr },
	}, func() (struct{}, bool, error) {
		n, err := t.port.Write(wire)
		wire = wire[n:]
		if err != nil {
			lastErr = err
			return struct{}{}, true, nil
		}
		return struct{}{}, len(wire) > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// Listen reads from the port and pushes every byte into sink until ctx is
// cancelled, the transport is closed, or a read fails.
func (t *Transport) Listen(ctx context.Context, sink gizwits.ByteSink) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := t.port.Read(buf)
		for _, b := range buf[:n] {
			if !sink.PushByte(b) {
				glog.Warningf("uart: receive queue full, dropping byte 0x%02X", b)
			}
		}
		if err != nil {
			if t.closed.Load() {
				return nil
			}
			return gizwits.NewTransportError("read", t.portName,
				fmt.Errorf("%w: %w", gizwits.ErrTransportRead, err), gizwits.ErrorTypeTransient)
		}
		if n == 0 && t.closed.Load() {
			return nil
		}
	}
}

// Close closes the port. A running Listen returns nil.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return gizwits.NewTransportError("close", t.portName, err, gizwits.ErrorTypePermanent)
	}
	return nil
}

// PortName returns the device path
func (t *Transport) PortName() string {
	return t.portName
}

// Type returns TransportUART
func (*Transport) Type() gizwits.TransportType {
	return gizwits.TransportUART
}

var _ gizwits.Transport = (*Transport)(nil)
