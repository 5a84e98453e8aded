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
	"math"

	"github.com/ZaparooProject/go-gizwits/datapoint"
)

func thermostatSchema() (*datapoint.Schema, error) {
	return datapoint.NewSchema(
		datapoint.Field{Name: "power", Kind: datapoint.KindBool, Writable: true},
		datapoint.Field{Name: "mode", Kind: datapoint.KindEnum, Bits: 2, Writable: true},
		datapoint.Field{Name: "target", Kind: datapoint.KindValue, Width: 1, Ratio: 0.5, Addition: 10, Writable: true},
		datapoint.Field{Name: "fault", Kind: datapoint.KindBool},
		datapoint.Field{Name: "temperature", Kind: datapoint.KindValue, Width: 2, Ratio: 0.1, Addition: -40, Noisy: true},
	)
}

// simulateStep moves the room temperature a tenth of the way, at least
// 0.1 degrees, toward the target when the heater is on and toward 18
// degrees when it is off.
func simulateStep(state *datapoint.Snapshot) error {
	power, err := state.Bool("power")
	if err != nil {
		return err
	}
	temp, err := state.Get("temperature")
	if err != nil {
		return err
	}

	goal := 18.0
	if power {
		if goal, err = state.Get("target"); err != nil {
			return err
		}
	}
	next := goal
	if diff := goal - temp; math.Abs(diff) > 0.1 {
		step := diff / 10
		if math.Abs(step) < 0.1 {
			step = math.Copysign(0.1, diff)
		}
		next = temp + step
	}
	if err := state.Set("temperature", next); err != nil {
		return err
	}
	return state.SetBool("fault", next > 60)
}
