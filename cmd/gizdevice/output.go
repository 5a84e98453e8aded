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

package main

import (
	"fmt"

	gizwits "github.com/ZaparooProject/go-gizwits"
	"github.com/ZaparooProject/go-gizwits/datapoint"
)

// Output handles consistent formatting of messages
type Output struct {
	verbose bool
}

// NewOutput creates a new output handler
func NewOutput(verbose bool) *Output {
	return &Output{verbose: verbose}
}

// Batch prints one event batch
func (o *Output) Batch(batch *gizwits.EventBatch, state *datapoint.Snapshot) error {
	switch batch.Class {
	case gizwits.BatchControl:
		for _, c := range batch.Changes {
			_, _ = fmt.Printf("CONTROL: %s = %g\n", c.Field.Name, c.Value)
		}
		if o.verbose && state != nil {
			o.state(state)
		}
	case gizwits.BatchModuleStatus:
		for _, e := range batch.Events {
			if e.Kind == gizwits.EventRSSI {
				o.Verbose("MODULE: signal %d/7", int(e.Value))
				continue
			}
			_, _ = fmt.Printf("MODULE: %s\n", e.Kind)
		}
	case gizwits.BatchTransparent:
		_, _ = fmt.Printf("DATA: % X\n", batch.Transparent)
	case gizwits.BatchNetworkTime:
		_, _ = fmt.Printf("TIME: %s\n", batch.Time.Time().Format("2006-01-02 15:04:05 MST"))
	case gizwits.BatchModuleInfo:
		_, _ = fmt.Printf("MODULE: type %d hw %s sw %s mac %s\n",
			batch.Module.Type, batch.Module.HardwareVersion, batch.Module.SoftwareVersion, batch.Module.MAC)
	}
	return nil
}

func (*Output) state(state *datapoint.Snapshot) {
	for _, f := range state.Schema().Fields() {
		v, err := state.Get(f.Name)
		if err != nil {
			continue
		}
		_, _ = fmt.Printf("   %s: %g\n", f.Name, v)
	}
}

// Error prints an error message
func (*Output) Error(format string, args ...any) {
	_, _ = fmt.Printf("ERROR: "+format+"\n", args...)
}

// Warning prints a warning message
func (*Output) Warning(format string, args ...any) {
	_, _ = fmt.Printf("WARNING: "+format+"\n", args...)
}

// Info prints an info message
func (*Output) Info(format string, args ...any) {
	_, _ = fmt.Printf("INFO: "+format+"\n", args...)
}

// OK prints a success message
func (*Output) OK(format string, args ...any) {
	_, _ = fmt.Printf("OK: "+format+"\n", args...)
}

// Verbose prints only if verbose mode is enabled
func (o *Output) Verbose(format string, args ...any) {
	if o.verbose {
		_, _ = fmt.Printf(format+"\n", args...)
	}
}
