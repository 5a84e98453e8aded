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
	"time"

	"github.com/golang/glog"

	"github.com/ZaparooProject/go-gizwits/datapoint"
	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

var errRebootRequested = errors.New("module requested reboot")

// commandHandler processes one validated inbound frame. current is the
// application snapshot passed to the Poll that dispatched the frame.
type commandHandler func(e *Engine, f *frame.Frame, current *datapoint.Snapshot) error

// commandTable maps inbound command codes to their handlers
func commandTable() map[byte]commandHandler {
	return map[byte]commandHandler{
		frame.CmdGetDeviceInfo:    (*Engine).handleDeviceInfo,
		frame.CmdIssuedP0:         (*Engine).handleIssued,
		frame.CmdHeartbeat:        (*Engine).handleHeartbeat,
		frame.CmdWiFiStatus:       (*Engine).handleModuleStatus,
		frame.CmdMCUReboot:        (*Engine).handleReboot,
		frame.CmdErrorPackage:     (*Engine).handleModuleError,
		frame.AckReportP0:         (*Engine).handleAck,
		frame.AckWiFiConfig:       (*Engine).handleAck,
		frame.AckSetDefault:       (*Engine).handleAck,
		frame.AckProductionTest:   (*Engine).handleAck,
		frame.AckEnableBindWindow: (*Engine).handleAck,
		frame.AckGetNetworkTime:   (*Engine).handleNetworkTime,
		frame.AckGetModuleInfo:    (*Engine).handleModuleInfo,
	}
}

// dispatch routes one raw frame. Frames that cannot be handled are
// answered with an illegal-packet notification.
func (e *Engine) dispatch(raw []byte, current *datapoint.Snapshot) error {
	f, err := frame.Parse(raw)
	if err != nil {
		e.sendIllegal(raw[5], frame.ErrorCodeOther)
		return NewProtocolError("dispatch", raw[4], fmt.Errorf("%w: %w", ErrFrameCorrupted, err), ErrorTypeTransient)
	}
	debugf("gizwits: RX cmd=0x%02X sn=%d payload=% X", f.Cmd, f.Seq, f.Payload)

	handler, ok := e.handlers[f.Cmd]
	if !ok {
		e.sendIllegal(f.Seq, frame.ErrorCodeCommand)
		return NewProtocolError("dispatch", f.Cmd, ErrUnknownCommand, ErrorTypeTransient)
	}

	if err := handler(e, f, current); err != nil {
		if errors.Is(err, ErrRestarted) {
			return err
		}
		if errors.Is(err, ErrInvalidPayload) {
			e.sendIllegal(f.Seq, frame.ErrorCodeOther)
			return NewProtocolError("dispatch", f.Cmd, err, ErrorTypeTransient)
		}
		return err
	}
	return nil
}

// commonAck answers f with an empty frame carrying the ack command. The
// sub-device flag is cleared since the ack carries no did prefix.
func (e *Engine) commonAck(f *frame.Frame) error {
	ack := &frame.Frame{Cmd: frame.AckFor(f.Cmd), Seq: f.Seq, Flags: [2]byte{f.Flags[0], frame.FlagNone}}
	return e.send("ack", ack, false)
}

// issuedAck answers an issued frame, echoing any sub-device id.
func (e *Engine) issuedAck(f *frame.Frame, payload []byte) error {
	ack := &frame.Frame{
		Cmd:       frame.AckFor(f.Cmd),
		Seq:       f.Seq,
		Flags:     [2]byte{0x00, f.Flags[1]},
		SubDevice: f.SubDevice,
		Payload:   payload,
	}
	return e.send("issued ack", ack, false)
}

func (e *Engine) handleDeviceInfo(f *frame.Frame, _ *datapoint.Snapshot) error {
	reply := &frame.Frame{Cmd: frame.AckGetDeviceInfo, Seq: f.Seq, Payload: e.config.DeviceInfo.Bytes()}
	return e.send("device info", reply, false)
}

func (e *Engine) handleHeartbeat(f *frame.Frame, _ *datapoint.Snapshot) error {
	return e.commonAck(f)
}

func (e *Engine) handleIssued(f *frame.Frame, current *datapoint.Snapshot) error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("%w: issued frame without action", ErrInvalidPayload)
	}
	action, body := f.Payload[0], f.Payload[1:]

	switch action {
	case frame.ActionControl:
		changes, err := e.schema.DecodeControl(body)
		if err != nil {
			return err
		}
		if err := e.issued.Apply(changes); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		events := make([]Event, 0, len(changes))
		for _, c := range changes {
			events = append(events, Event{Kind: EventControl, Field: c.Field.Name, Value: c.Value})
		}
		e.queue(&EventBatch{
			Class:     BatchControl,
			Events:    events,
			Changes:   changes,
			SubDevice: f.SubDevice,
			Raw:       body,
		})
		return nil

	case frame.ActionReadStatus:
		status, err := e.encoder.Encode(current)
		if err != nil {
			return NewProtocolError("read status", f.Cmd, err, ErrorTypePermanent)
		}
		payload := make([]byte, 0, 1+len(status))
		payload = append(payload, frame.ActionReadStatusAck)
		payload = append(payload, status...)
		return e.issuedAck(f, payload)

	case frame.ActionW2DTransparent:
		if err := e.issuedAck(f, nil); err != nil {
			return err
		}
		e.queue(&EventBatch{
			Class:       BatchTransparent,
			Events:      []Event{{Kind: EventTransparentData}},
			Transparent: body,
			SubDevice:   f.SubDevice,
			Raw:         body,
		})
		return nil

	default:
		return fmt.Errorf("%w: unknown action 0x%02X", ErrInvalidPayload, action)
	}
}

func (e *Engine) handleModuleStatus(f *frame.Frame, _ *datapoint.Snapshot) error {
	status, err := ParseModuleStatus(f.Payload)
	if err != nil {
		return err
	}
	if err := e.commonAck(f); err != nil {
		return err
	}

	events := diffModuleStatus(e.lastStatus, status)
	e.lastStatus = status
	e.queue(&EventBatch{
		Class:  BatchModuleStatus,
		Events: events,
		Status: status,
		Raw:    f.Payload,
	})
	return nil
}

func (e *Engine) handleReboot(f *frame.Frame, _ *datapoint.Snapshot) error {
	if err := e.commonAck(f); err != nil {
		glog.Warningf("gizwits: reboot ack: %v", err)
	}

	settle := millis(e.config.RebootSettle)
	start := e.clock.NowMs()
	for elapsed(e.clock.NowMs(), start) <= settle {
		time.Sleep(time.Millisecond)
	}
	return e.restart(errRebootRequested)
}

func (e *Engine) handleModuleError(f *frame.Frame, _ *datapoint.Snapshot) error {
	code := byte(0)
	if len(f.Payload) > 0 {
		code = f.Payload[0]
	}
	glog.Warningf("gizwits: module rejected frame sn=%d with error 0x%02X", f.Seq, code)
	return nil
}

func (e *Engine) handleAck(f *frame.Frame, _ *datapoint.Snapshot) error {
	if !e.ack.acknowledge(f.Cmd) {
		debugf("gizwits: unexpected ack cmd=0x%02X sn=%d", f.Cmd, f.Seq)
	}
	return nil
}

func (e *Engine) handleNetworkTime(f *frame.Frame, _ *datapoint.Snapshot) error {
	e.ack.acknowledge(f.Cmd)
	t, err := ParseNetworkTime(f.Payload)
	if err != nil {
		return err
	}
	e.queue(&EventBatch{
		Class:  BatchNetworkTime,
		Events: []Event{{Kind: EventNetworkTime}},
		Time:   t,
		Raw:    f.Payload,
	})
	return nil
}

func (e *Engine) handleModuleInfo(f *frame.Frame, _ *datapoint.Snapshot) error {
	e.ack.acknowledge(f.Cmd)
	info, err := ParseModuleInfo(f.Payload)
	if err != nil {
		return err
	}
	e.queue(&EventBatch{
		Class:  BatchModuleInfo,
		Events: []Event{{Kind: EventModuleInfo}},
		Module: info,
		Raw:    f.Payload,
	})
	return nil
}
