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

	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// Mode selects a module configuration command
type Mode byte

// Configuration modes
const (
	ModeReset          Mode = 0x00 // Restore module defaults
	ModeSoftAP         Mode = 0x01 // Enter soft-AP onboarding
	ModeAirLink        Mode = 0x02 // Enter air-link onboarding
	ModeProductionTest Mode = 0x03
	ModeBindWindow     Mode = 0x04 // Open the binding window
)

func (m Mode) String() string {
	switch m {
	case ModeReset:
		return "reset"
	case ModeSoftAP:
		return "softap"
	case ModeAirLink:
		return "airlink"
	case ModeProductionTest:
		return "production-test"
	case ModeBindWindow:
		return "bind-window"
	default:
		return fmt.Sprintf("Mode(%d)", byte(m))
	}
}

// ParseMode converts a mode name as printed by Mode.String
func ParseMode(s string) (Mode, error) {
	for m := ModeReset; m <= ModeBindWindow; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// SetMode sends the configuration command for mode. The frame is tracked
// for acknowledgment. Unknown modes send nothing.
func (e *Engine) SetMode(mode Mode) error {
	if e.halted {
		return ErrRestarted
	}

	var f *frame.Frame
	switch mode {
	case ModeReset:
		f = &frame.Frame{Cmd: frame.CmdSetDefault}
	case ModeSoftAP, ModeAirLink:
		f = &frame.Frame{Cmd: frame.CmdWiFiConfig, Payload: []byte{byte(mode)}}
	case ModeProductionTest:
		f = &frame.Frame{Cmd: frame.CmdProductionTest}
	case ModeBindWindow:
		f = &frame.Frame{Cmd: frame.CmdEnableBindWindow}
	default:
		return fmt.Errorf("%w: mode %d", ErrInvalidParameter, byte(mode))
	}

	f.Seq = e.nextSeq()
	return e.send("set mode "+mode.String(), f, true)
}
