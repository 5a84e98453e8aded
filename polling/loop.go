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

// Package polling runs an engine's poll cycle on its own goroutine and
// owns the device's data-point snapshot.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	gizwits "github.com/ZaparooProject/go-gizwits"
	"github.com/ZaparooProject/go-gizwits/datapoint"
)

// Loop errors
var (
	ErrLoopRunning    = errors.New("loop is already running")
	ErrLoopNotRunning = errors.New("loop is not running")
)

// Config holds loop options
type Config struct {
	// PollInterval separates poll cycles
	PollInterval time.Duration
	// ApplyControl copies remote control changes into the snapshot
	// before OnEvents runs
	ApplyControl bool
}

// DefaultConfig polls every 10 ms and applies control changes
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 10 * time.Millisecond,
		ApplyControl: true,
	}
}

// Callbacks receive loop activity. All of them run on the loop goroutine.
type Callbacks struct {
	// OnEvents receives each event batch with the loop's snapshot
	OnEvents func(batch *gizwits.EventBatch, state *datapoint.Snapshot) error
	// OnError receives recoverable poll errors
	OnError func(err error)
	// OnRestart runs once after the engine restarted the device
	OnRestart func()
}

// Metrics tracks loop activity
type Metrics struct {
	PollCycles      int64
	PollErrors      int64
	Batches         int64
	CallbackErrors  int64
	LastPollLatency time.Duration
}

type request struct {
	fn     func(*gizwits.Engine, *datapoint.Snapshot) error
	result chan error
}

// Loop polls an engine. Create it, pass it to the engine with
// gizwits.WithEventHandler, then Start it with the same engine.
type Loop struct {
	engine    *gizwits.Engine
	state     *datapoint.Snapshot
	config    *Config
	callbacks Callbacks
	requests  chan request
	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex // guards cancel and done
	running   atomic.Bool

	pollCycles      atomic.Int64
	pollErrors      atomic.Int64
	batches         atomic.Int64
	callbackErrors  atomic.Int64
	lastPollLatency atomic.Int64
}

// NewLoop creates a stopped loop
func NewLoop(config *Config, callbacks Callbacks) *Loop {
	if config == nil {
		config = DefaultConfig()
	}
	return &Loop{
		config:    config,
		callbacks: callbacks,
		requests:  make(chan request),
	}
}

// Start begins polling engine on a new goroutine. The snapshot starts
// from the schema defaults.
func (l *Loop) Start(ctx context.Context, engine *gizwits.Engine) error {
	if engine == nil {
		return gizwits.ErrInvalidParameter
	}
	if l.config.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", gizwits.ErrInvalidParameter)
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}

	l.engine = engine
	l.state = engine.Schema().NewSnapshot()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer l.running.Store(false)
		l.run(loopCtx)
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the loop exits. It is nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// IsRunning reports whether the loop goroutine is active
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Update runs fn with the snapshot on the loop goroutine between poll
// cycles. Changes are reported by the next cycle.
func (l *Loop) Update(ctx context.Context, fn func(state *datapoint.Snapshot) error) error {
	return l.Do(ctx, func(_ *gizwits.Engine, state *datapoint.Snapshot) error {
		return fn(state)
	})
}

// Snapshot returns a copy of the current values
func (l *Loop) Snapshot(ctx context.Context) (*datapoint.Snapshot, error) {
	var snap *datapoint.Snapshot
	err := l.Update(ctx, func(state *datapoint.Snapshot) error {
		snap = state.Clone()
		return nil
	})
	return snap, err
}

// Do runs fn on the loop goroutine, where engine methods may be called.
func (l *Loop) Do(ctx context.Context, fn func(*gizwits.Engine, *datapoint.Snapshot) error) error {
	done := l.Done()
	if done == nil || !l.running.Load() {
		return ErrLoopNotRunning
	}

	req := request{fn: fn, result: make(chan error, 1)}
	select {
	case l.requests <- req:
	case <-done:
		return ErrLoopNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleEvents implements gizwits.EventHandler. The engine calls it from
// Poll, which runs on the loop goroutine.
func (l *Loop) HandleEvents(batch *gizwits.EventBatch) error {
	l.batches.Add(1)
	if l.config.ApplyControl && l.state != nil {
		if err := batch.Apply(l.state); err != nil {
			l.callbackErrors.Add(1)
			return err
		}
	}
	if l.callbacks.OnEvents == nil {
		return nil
	}
	if err := l.callbacks.OnEvents(batch, l.state); err != nil {
		l.callbackErrors.Add(1)
		return err
	}
	return nil
}

// GetMetrics returns current loop metrics
func (l *Loop) GetMetrics() Metrics {
	return Metrics{
		PollCycles:      l.pollCycles.Load(),
		PollErrors:      l.pollErrors.Load(),
		Batches:         l.batches.Load(),
		CallbackErrors:  l.callbackErrors.Load(),
		LastPollLatency: time.Duration(l.lastPollLatency.Load()),
	}
}

func (l *Loop) run(ctx context.Context) {
	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-l.requests:
			req.result <- req.fn(l.engine, l.state)
		case <-ticker.C:
			if l.poll() {
				return
			}
		}
	}
}

// poll runs one engine cycle and reports whether the loop must end.
func (l *Loop) poll() bool {
	start := time.Now()
	err := l.engine.Poll(l.state)
	l.lastPollLatency.Store(int64(time.Since(start)))
	l.pollCycles.Add(1)

	switch {
	case err == nil:
		return false
	case errors.Is(err, gizwits.ErrRestarted):
		glog.Warning("polling: engine restarted, stopping loop")
		if l.callbacks.OnRestart != nil {
			l.callbacks.OnRestart()
		}
		return true
	default:
		l.pollErrors.Add(1)
		if l.callbacks.OnError != nil {
			l.callbacks.OnError(err)
		} else {
			glog.Warningf("polling: %v", err)
		}
		return false
	}
}
