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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ZaparooProject/go-gizwits/datapoint"
	testutil "github.com/ZaparooProject/go-gizwits/internal/testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/golang/glog.(*fileSink).flushDaemon"))
}

func thermostatSchema(t *testing.T) *datapoint.Schema {
	t.Helper()
	s, err := datapoint.NewSchema(
		datapoint.Field{Name: "power", Kind: datapoint.KindBool, Writable: true},
		datapoint.Field{Name: "mode", Kind: datapoint.KindEnum, Bits: 3, Writable: true},
		datapoint.Field{Name: "target", Kind: datapoint.KindValue, Width: 1, Ratio: 0.5, Addition: 10, Writable: true},
		datapoint.Field{Name: "fault", Kind: datapoint.KindBool},
		datapoint.Field{
			Name: "temperature", Kind: datapoint.KindValue,
			Width: 2, Ratio: 0.1, Addition: -40, Noisy: true,
		},
	)
	require.NoError(t, err)
	return s
}

// stepClock advances one millisecond every time it is read, so busy waits
// inside the engine terminate.
type stepClock struct {
	ms atomic.Uint32
}

func (c *stepClock) NowMs() uint32 {
	return c.ms.Add(1)
}

// engineWriter forwards module bytes to an engine created later.
type engineWriter struct {
	engine *Engine
}

func (w *engineWriter) Write(p []byte) (int, error) {
	return w.engine.Write(p)
}

type harness struct {
	transport *MockTransport
	module    *testutil.VirtualModule
	clock     *TickClock
	engine    *Engine
	current   *datapoint.Snapshot
	batches   []*EventBatch
	restarts  atomic.Int32
	mu        sync.Mutex
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		transport: NewMockTransport(),
		clock:     NewTickClock(0),
	}
	sink := &engineWriter{}
	h.module = testutil.NewVirtualModule(sink)
	h.transport.OnWrite = h.module.Receive

	base := []Option{
		WithClock(h.clock),
		WithRestarter(RestartFunc(func() { h.restarts.Add(1) })),
		WithEventHandler(EventHandlerFunc(func(batch *EventBatch) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.batches = append(h.batches, batch)
			return nil
		})),
	}
	engine, err := New(h.transport, thermostatSchema(t), append(base, opts...)...)
	require.NoError(t, err)
	sink.engine = engine
	h.engine = engine
	h.current = engine.Schema().NewSnapshot()
	return h
}

// deliver sends wire bytes from the module and runs one poll cycle.
func (h *harness) deliver(wire []byte) error {
	h.module.Send(wire)
	return h.engine.Poll(h.current)
}

func (h *harness) poll() error {
	return h.engine.Poll(h.current)
}

func (h *harness) events() []*EventBatch {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*EventBatch(nil), h.batches...)
}
