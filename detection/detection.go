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

// Package detection finds serial ports that may have a Wi-Fi module
// attached.
package detection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	"go.bug.st/serial/enumerator"
)

// ErrNoPorts is returned when discovery finds no usable port
var ErrNoPorts = errors.New("no serial ports found")

// Port describes a candidate serial port
type Port struct {
	Path         string
	VIDPID       string // Empty for non-USB ports
	Product      string
	SerialNumber string
	Bridge       string // Known USB-UART bridge chip, if recognised
}

// IsUSB reports whether the port is a USB serial device
func (p Port) IsUSB() bool {
	return p.VIDPID != ""
}

func (p Port) String() string {
	if p.Bridge != "" {
		return fmt.Sprintf("%s (%s %s)", p.Path, p.Bridge, p.VIDPID)
	}
	if p.VIDPID != "" {
		return fmt.Sprintf("%s (%s)", p.Path, p.VIDPID)
	}
	return p.Path
}

// knownBridges are the USB-UART chips found on Gizwits development boards
// and common adapters
var knownBridges = map[string]string{
	"1A86:7523": "CH340",
	"1A86:55D4": "CH9102",
	"10C4:EA60": "CP210x",
	"0403:6001": "FT232R",
	"0403:6015": "FT231X",
	"067B:2303": "PL2303",
}

// Options controls discovery
type Options struct {
	Blocklist   []string // VID:PID pairs to skip, DefaultBlocklist when nil
	IgnorePaths []string // Device paths to skip
	// IncludeNonUSB keeps on-board UARTs such as /dev/ttyS0 or /dev/ttyAMA0
	IncludeNonUSB bool
}

// portLister is replaced in tests
var portLister = enumerator.GetDetailedPortsList

// DetectPorts lists candidate ports, known bridge chips first.
func DetectPorts(opts Options) ([]Port, error) {
	details, err := portLister()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	blocklist := opts.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}

	var ports []Port
	for _, d := range details {
		port := Port{Path: d.Name}
		if d.IsUSB {
			port.VIDPID = FormatVIDPID(d.VID, d.PID)
			port.SerialNumber = d.SerialNumber
			port.Product = d.Product
			port.Bridge = knownBridges[port.VIDPID]
		}

		switch {
		case IsPathIgnored(port.Path, opts.IgnorePaths):
			glog.V(1).Infof("detection: %s ignored", port.Path)
			continue
		case port.IsUSB() && IsBlocked(port.VIDPID, blocklist):
			glog.V(1).Infof("detection: %s blocked (%s)", port.Path, port.VIDPID)
			continue
		case !port.IsUSB() && !opts.IncludeNonUSB:
			continue
		case strings.Contains(strings.ToLower(port.Path), "bluetooth"):
			continue
		}
		ports = append(ports, port)
	}

	if len(ports) == 0 {
		return nil, ErrNoPorts
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i].Bridge != "" && ports[j].Bridge == ""
	})
	return ports, nil
}

// DetectPort returns the most likely module port.
func DetectPort(opts Options) (Port, error) {
	ports, err := DetectPorts(opts)
	if err != nil {
		return Port{}, err
	}
	if len(ports) > 1 {
		glog.Infof("detection: %d candidate ports, using %s", len(ports), ports[0])
	}
	return ports[0], nil
}
