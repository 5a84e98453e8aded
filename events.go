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

	"github.com/ZaparooProject/go-gizwits/datapoint"
)

// EventKind names a single event inside a batch
type EventKind int

// Event kinds
const (
	EventControl EventKind = iota + 1
	EventSoftAP
	EventAirLink
	EventStation
	EventBindingOpened
	EventBindingClosed
	EventRouterConnected
	EventRouterDisconnected
	EventCloudConnected
	EventCloudDisconnected
	EventAppConnected
	EventAppDisconnected
	EventTestModeOn
	EventTestModeOff
	EventRSSI
	EventTransparentData
	EventNetworkTime
	EventModuleInfo
)

var eventNames = map[EventKind]string{
	EventControl:            "control",
	EventSoftAP:             "softap",
	EventAirLink:            "airlink",
	EventStation:            "station",
	EventBindingOpened:      "binding-opened",
	EventBindingClosed:      "binding-closed",
	EventRouterConnected:    "router-connected",
	EventRouterDisconnected: "router-disconnected",
	EventCloudConnected:     "cloud-connected",
	EventCloudDisconnected:  "cloud-disconnected",
	EventAppConnected:       "app-connected",
	EventAppDisconnected:    "app-disconnected",
	EventTestModeOn:         "testmode-on",
	EventTestModeOff:        "testmode-off",
	EventRSSI:               "rssi",
	EventTransparentData:    "transparent-data",
	EventNetworkTime:        "network-time",
	EventModuleInfo:         "module-info",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// BatchClass identifies which inbound message produced a batch
type BatchClass int

// Batch classes
const (
	BatchControl BatchClass = iota + 1
	BatchModuleStatus
	BatchTransparent
	BatchNetworkTime
	BatchModuleInfo
)

func (c BatchClass) String() string {
	switch c {
	case BatchControl:
		return "control"
	case BatchModuleStatus:
		return "module-status"
	case BatchTransparent:
		return "transparent"
	case BatchNetworkTime:
		return "network-time"
	case BatchModuleInfo:
		return "module-info"
	default:
		return fmt.Sprintf("BatchClass(%d)", int(c))
	}
}

// Event is one named occurrence. Field and Value are set for control
// events; Value carries the signal strength for EventRSSI.
type Event struct {
	Field string
	Kind  EventKind
	Value float64
}

// EventBatch is everything decoded from one inbound frame. Only the
// fields matching Class are populated.
type EventBatch struct {
	Changes     []datapoint.Change
	Events      []Event
	Transparent []byte
	SubDevice   []byte
	Raw         []byte // Frame payload the batch was decoded from
	Module      ModuleInfo
	Time        NetworkTime
	Status      ModuleStatus
	Class       BatchClass
}

// Apply copies the control changes of the batch into dst.
func (b *EventBatch) Apply(dst *datapoint.Snapshot) error {
	if b.Class != BatchControl {
		return nil
	}
	return dst.Apply(b.Changes)
}

// EventHandler receives at most one batch per Poll
type EventHandler interface {
	HandleEvents(batch *EventBatch) error
}

// EventHandlerFunc adapts a function to the EventHandler interface
type EventHandlerFunc func(batch *EventBatch) error

// HandleEvents calls f.
func (f EventHandlerFunc) HandleEvents(batch *EventBatch) error {
	return f(batch)
}

// diffModuleStatus returns the events for the transition prev -> next.
// The RSSI event is always last.
func diffModuleStatus(prev, next ModuleStatus) []Event {
	var events []Event
	add := func(kind EventKind) {
		events = append(events, Event{Kind: kind})
	}

	if prev.Onboarding != next.Onboarding {
		if next.SoftAP {
			add(EventSoftAP)
		}
		if next.Station {
			if next.Onboarding {
				add(EventAirLink)
			} else {
				add(EventStation)
			}
		}
	}

	transitions := []struct {
		was, now bool
		on, off  EventKind
	}{
		{prev.Binding, next.Binding, EventBindingOpened, EventBindingClosed},
		{prev.Router, next.Router, EventRouterConnected, EventRouterDisconnected},
		{prev.Cloud, next.Cloud, EventCloudConnected, EventCloudDisconnected},
		{prev.App, next.App, EventAppConnected, EventAppDisconnected},
		{prev.TestMode, next.TestMode, EventTestModeOn, EventTestModeOff},
	}
	for _, tr := range transitions {
		switch {
		case tr.was == tr.now:
		case tr.now:
			add(tr.on)
		default:
			add(tr.off)
		}
	}

	events = append(events, Event{Kind: EventRSSI, Value: float64(next.RSSI)})
	return events
}
