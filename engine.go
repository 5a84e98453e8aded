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
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/ZaparooProject/go-gizwits/datapoint"
	"github.com/ZaparooProject/go-gizwits/internal/frame"
	"github.com/ZaparooProject/go-gizwits/internal/ringbuf"
)

// Stats counts engine activity since the last Init
type Stats struct {
	Frames          uint64 // Valid frames deframed
	ChecksumErrors  uint64
	Resyncs         uint64
	Discarded       uint64 // Partial frames dropped for an impossible length
	DroppedBytes    uint64 // Bytes lost to a full receive queue
	Reports         uint64
	Retransmissions uint64
}

// Engine is the device side of the MCU to Wi-Fi module protocol.
//
// Thread Safety: PushByte and Write may be called from one receive
// goroutine concurrently with the other methods. Every other method,
// including Init, must be called from a single goroutine, normally the
// one running the poll loop.
type Engine struct {
	transport    Transport
	clock        Clock
	restarter    Restarter
	handler      EventHandler
	schema       *datapoint.Schema
	config       *Config
	rx           *ringbuf.Queue
	deframer     *frame.Deframer
	encoder      *datapoint.Encoder
	handlers     map[byte]commandHandler
	issued       *datapoint.Snapshot
	lastReported *datapoint.Snapshot
	pending      *EventBatch
	ack          ackTracker
	report       reportTimers
	dropped      atomic.Uint64
	reports      uint64
	resent       uint64
	lastStatus   ModuleStatus
	halted       bool
	seq          byte
}

// New creates an engine that writes frames to t and encodes data points
// with schema.
func New(t Transport, schema *datapoint.Schema, opts ...Option) (*Engine, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrInvalidParameter)
	}

	e := &Engine{
		transport: t,
		schema:    schema,
		config:    DefaultConfig(),
		clock:     NewSystemClock(),
		restarter: exitRestarter{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	e.rx = ringbuf.New(e.config.QueueCapacity)
	e.deframer = frame.NewDeframer()
	e.encoder = datapoint.NewEncoder(schema)
	e.handlers = commandTable()
	e.Init()
	return e, nil
}

// Init resets all protocol state: queued bytes, partial frames, the
// pending acknowledgment, snapshots, timers and statistics.
func (e *Engine) Init() {
	e.rx.Reset()
	e.deframer.Reset()
	e.ack.clear()
	e.issued = e.schema.NewSnapshot()
	e.lastReported = e.schema.NewSnapshot()
	e.pending = nil
	e.lastStatus = ModuleStatus{}
	e.report.reset(e.clock.NowMs())
	e.dropped.Store(0)
	e.reports = 0
	e.resent = 0
	e.halted = false
	e.seq = 0
	debugln("gizwits: engine initialized")
}

// Schema returns the data-point schema
func (e *Engine) Schema() *datapoint.Schema {
	return e.schema
}

// PushByte queues one received byte. It never blocks; false means the
// queue was full and the byte was dropped.
func (e *Engine) PushByte(b byte) bool {
	if e.rx.Push(b) {
		return true
	}
	e.dropped.Add(1)
	return false
}

// Write queues received bytes, implementing io.Writer for receive loops.
func (e *Engine) Write(p []byte) (int, error) {
	for i, b := range p {
		if !e.PushByte(b) {
			return i, ErrQueueFull
		}
	}
	return len(p), nil
}

// Pending reports whether a sent frame is awaiting acknowledgment
func (e *Engine) Pending() bool {
	return e.ack.active
}

// Halted reports whether the engine has restarted the device
func (e *Engine) Halted() bool {
	return e.halted
}

// Issued returns a copy of the values last set by the remote side
func (e *Engine) Issued() *datapoint.Snapshot {
	return e.issued.Clone()
}

// LastReported returns a copy of the values in the last report sent
func (e *Engine) LastReported() *datapoint.Snapshot {
	return e.lastReported.Clone()
}

// ModuleStatus returns the connectivity state last pushed by the module
func (e *Engine) ModuleStatus() ModuleStatus {
	return e.lastStatus
}

// Stats returns activity counters
func (e *Engine) Stats() Stats {
	ds := e.deframer.Stats()
	return Stats{
		Frames:          ds.Frames,
		ChecksumErrors:  ds.ChecksumErrors,
		Resyncs:         ds.Resyncs,
		Discarded:       ds.Discarded,
		DroppedBytes:    e.dropped.Load(),
		Reports:         e.reports,
		Retransmissions: e.resent,
	}
}

// Poll runs one processing cycle: retransmit or restart on a missing
// acknowledgment, deframe and dispatch at most one frame, deliver the
// pending event batch, then report current if the report policy says so.
//
// Recoverable errors are handled inside the cycle and the first one is
// returned after the cycle completes. ErrRestarted is returned once the
// device has been restarted; the engine does nothing further until Init.
func (e *Engine) Poll(current *datapoint.Snapshot) error {
	if e.halted {
		return ErrRestarted
	}
	if current == nil || current.Schema() != e.schema {
		return fmt.Errorf("%w: snapshot does not match engine schema", ErrInvalidParameter)
	}

	if err := e.checkAck(); err != nil {
		return err
	}

	var cycleErr error
	raw, err := e.deframer.Next(e.rx)
	switch {
	case err == nil:
		if err := e.dispatch(raw, current); err != nil {
			if errors.Is(err, ErrRestarted) {
				return err
			}
			cycleErr = err
		}
	case errors.Is(err, frame.ErrChecksumMismatch):
		var csErr *frame.ChecksumError
		if errors.As(err, &csErr) {
			glog.Warningf("gizwits: %v", csErr)
			e.sendIllegal(csErr.Seq, frame.ErrorCodeChecksum)
			cycleErr = NewProtocolError("deframe", csErr.Cmd, err, ErrorTypeTransient)
		}
	}

	e.deliver()

	if err := e.evaluateReport(current); err != nil && cycleErr == nil {
		cycleErr = err
	}
	return cycleErr
}

// SendTransparent pushes an opaque payload to the module. The frame is
// tracked for acknowledgment.
func (e *Engine) SendTransparent(data []byte) error {
	if e.halted {
		return ErrRestarted
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty transparent payload", ErrInvalidParameter)
	}

	payload := make([]byte, 0, 1+len(data))
	payload = append(payload, frame.ActionD2WTransparent)
	payload = append(payload, data...)
	f := &frame.Frame{Cmd: frame.CmdReportP0, Payload: payload}
	if f.LengthField()+frame.LengthFieldSize > frame.MaxFrameLength {
		return fmt.Errorf("%w: %d byte transparent payload", ErrDataTooLarge, len(data))
	}
	f.Seq = e.nextSeq()
	return e.send("send transparent", f, true)
}

// RequestNetworkTime asks the module for the current time. The answer is
// delivered as an EventNetworkTime batch.
func (e *Engine) RequestNetworkTime() error {
	if e.halted {
		return ErrRestarted
	}
	return e.send("request network time", &frame.Frame{Cmd: frame.CmdGetNetworkTime, Seq: e.nextSeq()}, true)
}

// RequestModuleInfo asks the module to describe itself. The answer is
// delivered as an EventModuleInfo batch.
func (e *Engine) RequestModuleInfo() error {
	if e.halted {
		return ErrRestarted
	}
	f := &frame.Frame{Cmd: frame.CmdGetModuleInfo, Seq: e.nextSeq(), Payload: []byte{0x00}}
	return e.send("request module info", f, true)
}

func (e *Engine) nextSeq() byte {
	seq := e.seq
	e.seq++
	return seq
}

// send writes f and, when tracked, makes it the frame awaiting
// acknowledgment.
func (e *Engine) send(op string, f *frame.Frame, tracked bool) error {
	raw, err := f.Bytes()
	if err != nil {
		return NewProtocolError(op, f.Cmd, err, ErrorTypePermanent)
	}
	if err := e.write(op, raw); err != nil {
		return err
	}
	if tracked {
		e.ack.track(raw, e.clock.NowMs())
	}
	return nil
}

func (e *Engine) write(op string, raw []byte) error {
	debugf("gizwits: %s TX % X", op, raw)
	n, err := e.transport.Write(raw)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return err
		}
		return NewTransportError(op, "", fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
	}
	if n != len(raw) {
		return NewTransportError(op, "", ErrShortWrite, ErrorTypeTransient)
	}
	return nil
}

// sendIllegal notifies the module that frame seq could not be processed.
func (e *Engine) sendIllegal(seq, code byte) {
	f := &frame.Frame{Cmd: frame.AckErrorPackage, Seq: seq, Payload: []byte{code}}
	if err := e.send("illegal packet", f, false); err != nil {
		glog.Warningf("gizwits: %v", err)
	}
}

// queue stores batch for delivery at the end of the cycle. Only one frame
// is dispatched per cycle, so the slot is always empty here.
func (e *Engine) queue(batch *EventBatch) {
	if e.pending != nil {
		debugf("gizwits: replacing undelivered %v batch", e.pending.Class)
	}
	e.pending = batch
}

func (e *Engine) deliver() {
	batch := e.pending
	e.pending = nil
	if batch == nil || e.handler == nil {
		return
	}
	if err := e.handler.HandleEvents(batch); err != nil {
		glog.Warningf("gizwits: event handler for %v batch: %v", batch.Class, err)
	}
}

// restart halts the engine and hands control to the restarter.
func (e *Engine) restart(reason error) error {
	glog.Warningf("gizwits: restarting device: %v", reason)
	e.halted = true
	e.ack.clear()
	e.restarter.Restart()
	return fmt.Errorf("%w: %w", ErrRestarted, reason)
}

// exitRestarter ends the process so a supervisor can start it again.
type exitRestarter struct{}

func (exitRestarter) Restart() {
	glog.Exitf("gizwits: device restart requested")
}
