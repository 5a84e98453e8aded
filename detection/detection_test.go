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

package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/ttyUSB0", ignorePaths: []string{}, expected: false},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/ttyUSB0"}, expected: false},
		{name: "exact match unix path", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "windows path case folded", devicePath: "COM3", ignorePaths: []string{"com3"}, expected: true},
		{name: "unclean path", devicePath: "/dev/../dev/ttyACM0", ignorePaths: []string{"/dev/ttyACM0"}, expected: true},
		{name: "empty entries skipped", devicePath: "/dev/ttyUSB1", ignorePaths: []string{"", "/dev/ttyUSB0"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPathIgnored(tt.devicePath, tt.ignorePaths); got != tt.expected {
				t.Errorf("IsPathIgnored(%q, %v) = %v, want %v", tt.devicePath, tt.ignorePaths, got, tt.expected)
			}
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlocked("1366:0105", DefaultBlocklist()))
	assert.True(t, IsBlocked(" 0483:374b ", DefaultBlocklist()))
	assert.False(t, IsBlocked("1A86:7523", DefaultBlocklist()))
	assert.False(t, IsBlocked("", []string{""}))
	assert.False(t, IsBlocked("garbage", []string{"garbage"}))
}

func TestFormatVIDPID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1A86:7523", FormatVIDPID("1a86", "7523"))
	assert.Empty(t, FormatVIDPID("", "7523"))
	assert.Empty(t, FormatVIDPID("zz", "7523"))
}

//nolint:paralleltest // replaces the package-level port lister
func TestDetectPorts(t *testing.T) {
	saved := portLister
	t.Cleanup(func() { portLister = saved })

	portLister = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyACM0", IsUSB: true, VID: "1366", PID: "0105"},
			{Name: "/dev/ttyUSB1", IsUSB: true, VID: "2341", PID: "0043"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", SerialNumber: "A1"},
			{Name: "/dev/ttyUSB2", IsUSB: true, VID: "10c4", PID: "ea60"},
		}, nil
	}

	ports, err := DetectPorts(Options{IgnorePaths: []string{"/dev/ttyUSB2"}})
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Path, "known bridges sort first")
	assert.Equal(t, "CH340", ports[0].Bridge)
	assert.Equal(t, "A1", ports[0].SerialNumber)
	assert.Equal(t, "/dev/ttyUSB1", ports[1].Path)
	assert.Equal(t, "/dev/ttyUSB0 (CH340 1A86:7523)", ports[0].String())

	ports, err = DetectPorts(Options{IncludeNonUSB: true, Blocklist: []string{}})
	require.NoError(t, err)
	assert.Len(t, ports, 5)
	assert.Equal(t, "/dev/ttyUSB2", ports[1].Path)
	assert.Equal(t, "/dev/ttyS0", ports[2].Path)
	assert.False(t, ports[2].IsUSB())

	port, err := DetectPort(Options{})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", port.Path)

	portLister = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{{Name: "/dev/ttyS0"}}, nil
	}
	_, err = DetectPort(Options{})
	require.ErrorIs(t, err, ErrNoPorts)

	enumErr := errors.New("permission denied")
	portLister = func() ([]*enumerator.PortDetails, error) { return nil, enumErr }
	_, err = DetectPorts(Options{})
	require.ErrorIs(t, err, enumErr)
}
