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

package testing

import (
	"io"
	"sync"

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// deviceRequests are the device frames a module acknowledges
var deviceRequests = map[byte]bool{
	frame.CmdReportP0:         true,
	frame.CmdWiFiConfig:       true,
	frame.CmdSetDefault:       true,
	frame.CmdProductionTest:   true,
	frame.CmdEnableBindWindow: true,
	frame.CmdGetNetworkTime:   true,
	frame.CmdGetModuleInfo:    true,
}

// VirtualModule simulates the Wi-Fi module side of the link. Feed it the
// device's outbound frames with Receive; it records them and, unless
// muted, writes acknowledgments back to the device sink.
type VirtualModule struct {
	sink        io.Writer
	TimeReply   []byte // Payload answering a network time request
	ModuleReply []byte // Payload answering a module info request
	received    []*frame.Frame
	mu          sync.Mutex
	seq         byte
	muted       bool
}

// NewVirtualModule creates a module that answers into sink
func NewVirtualModule(sink io.Writer) *VirtualModule {
	return &VirtualModule{sink: sink}
}

// Mute stops or resumes acknowledgments
func (v *VirtualModule) Mute(muted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = muted
}

// Receive handles one unstuffed frame written by the device. Frames that
// fail to parse are ignored.
func (v *VirtualModule) Receive(raw []byte) {
	f, err := frame.Parse(raw)
	if err != nil {
		return
	}

	v.mu.Lock()
	v.received = append(v.received, f)
	muted := v.muted
	v.mu.Unlock()

	if muted || !deviceRequests[f.Cmd] {
		return
	}

	var payload []byte
	switch f.Cmd {
	case frame.CmdGetNetworkTime:
		payload = v.TimeReply
	case frame.CmdGetModuleInfo:
		payload = v.ModuleReply
	}
	_, _ = v.sink.Write(BuildFrame(frame.AckFor(f.Cmd), f.Seq, payload))
}

// Send writes stuffed wire bytes to the device
func (v *VirtualModule) Send(wire []byte) {
	_, _ = v.sink.Write(wire)
}

// NextSeq returns a fresh module sequence number
func (v *VirtualModule) NextSeq() byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	return v.seq
}

// Received returns the device frames seen so far
func (v *VirtualModule) Received() []*frame.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*frame.Frame(nil), v.received...)
}

// ReceivedCmd returns the device frames with command cmd
func (v *VirtualModule) ReceivedCmd(cmd byte) []*frame.Frame {
	var out []*frame.Frame
	for _, f := range v.Received() {
		if f.Cmd == cmd {
			out = append(out, f)
		}
	}
	return out
}

// Reset forgets received frames
func (v *VirtualModule) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.received = nil
}
