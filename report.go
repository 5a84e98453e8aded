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
	"github.com/ZaparooProject/go-gizwits/datapoint"
	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// reportTimers holds the report policy clocks
type reportTimers struct {
	lastNoisy    uint32 // Last report allowed by a noisy data point
	lastPeriodic uint32
}

func (r *reportTimers) reset(now uint32) {
	r.lastNoisy = now
	r.lastPeriodic = now
}

// evaluateReport sends current to the module when a discrete data point
// changed, when a noisy one changed and the report interval has passed, or
// when the periodic report is due.
func (e *Engine) evaluateReport(current *datapoint.Snapshot) error {
	now := e.clock.NowMs()
	changes, err := current.Diff(e.lastReported)
	if err != nil {
		return err
	}

	due := false
	for _, c := range changes {
		if !c.Field.Noisy {
			due = true
			continue
		}
		if elapsed(now, e.report.lastNoisy) >= millis(e.config.ReportInterval) {
			e.report.lastNoisy = now
			due = true
		}
	}

	periodic := elapsed(now, e.report.lastPeriodic) >= millis(e.config.PeriodicReport)
	if !due && !periodic {
		return nil
	}

	if err := e.sendReport(current); err != nil {
		return err
	}
	if periodic {
		e.report.lastPeriodic = now
	}
	return nil
}

// sendReport encodes and sends current, then records it as last reported.
func (e *Engine) sendReport(current *datapoint.Snapshot) error {
	status, err := e.encoder.Encode(current)
	if err != nil {
		return NewProtocolError("report", frame.CmdReportP0, err, ErrorTypePermanent)
	}

	payload := make([]byte, 0, 1+len(status))
	payload = append(payload, frame.ActionReportStatus)
	payload = append(payload, status...)
	f := &frame.Frame{Cmd: frame.CmdReportP0, Seq: e.nextSeq(), Payload: payload}
	if err := e.send("report", f, true); err != nil {
		return err
	}

	e.reports++
	debugf("gizwits: reported %d data point bytes", len(status))
	return e.lastReported.CopyFrom(current)
}
