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
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Fixed protocol identity advertised in the device info reply
const (
	ProtocolVersion = "00000004"
	P0Version       = "00000002"
)

// Device info payload layout
const (
	deviceInfoLen      = 106
	versionFieldLen    = 8
	productKeyLen      = 32
	productSecretLen   = 32
	attributeFieldLen  = 8
	deviceAttrDataPt   = 0x02 // Data points are described by P0
	deviceAttrGateway  = 0x01
	moduleInfoLen      = 65
	moduleAddrFieldLen = 16
	networkTimeLen     = 11
	moduleStatusLen    = 2
)

// DeviceInfo is the static identity the device reports to the module.
type DeviceInfo struct {
	ProductKey      string
	ProductSecret   string
	HardwareVersion string
	SoftwareVersion string
	BindWindow      uint16 // Seconds the device accepts binding after power-up
	Gateway         bool
}

// DefaultDeviceInfo returns an identity with placeholder versions and no
// product credentials.
func DefaultDeviceInfo() DeviceInfo {
	return DeviceInfo{
		HardwareVersion: "03010100",
		SoftwareVersion: "03030000",
	}
}

// Validate checks that every text field fits its wire slot.
func (d DeviceInfo) Validate() error {
	checks := []struct {
		name  string
		value string
		limit int
	}{
		{"product key", d.ProductKey, productKeyLen},
		{"product secret", d.ProductSecret, productSecretLen},
		{"hardware version", d.HardwareVersion, versionFieldLen},
		{"software version", d.SoftwareVersion, versionFieldLen},
	}
	for _, c := range checks {
		if len(c.value) > c.limit {
			return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidParameter, c.name, c.limit)
		}
	}
	return nil
}

// Bytes encodes the device info reply payload.
func (d DeviceInfo) Bytes() []byte {
	buf := make([]byte, 0, deviceInfoLen)
	buf = appendFixed(buf, ProtocolVersion, versionFieldLen)
	buf = appendFixed(buf, P0Version, versionFieldLen)
	buf = appendFixed(buf, d.HardwareVersion, versionFieldLen)
	buf = appendFixed(buf, d.SoftwareVersion, versionFieldLen)
	buf = appendFixed(buf, d.ProductKey, productKeyLen)
	buf = binary.BigEndian.AppendUint16(buf, d.BindWindow)

	attr := make([]byte, attributeFieldLen)
	attr[attributeFieldLen-1] = deviceAttrDataPt
	if d.Gateway {
		attr[attributeFieldLen-1] |= deviceAttrGateway
	}
	buf = append(buf, attr...)
	return appendFixed(buf, d.ProductSecret, productSecretLen)
}

// ParseDeviceInfo decodes a device info reply payload.
func ParseDeviceInfo(p []byte) (DeviceInfo, error) {
	if len(p) < deviceInfoLen {
		return DeviceInfo{}, fmt.Errorf("%w: device info is %d bytes, want %d", ErrInvalidPayload, len(p), deviceInfoLen)
	}
	return DeviceInfo{
		HardwareVersion: readFixed(p[16:24]),
		SoftwareVersion: readFixed(p[24:32]),
		ProductKey:      readFixed(p[32:64]),
		BindWindow:      binary.BigEndian.Uint16(p[64:66]),
		Gateway:         p[73]&deviceAttrGateway != 0,
		ProductSecret:   readFixed(p[74:106]),
	}, nil
}

// ModuleStatus is the connectivity state pushed by the module.
type ModuleStatus struct {
	SoftAP     bool
	Station    bool
	Onboarding bool
	Binding    bool
	Router     bool
	Cloud      bool
	App        bool
	TestMode   bool
	RSSI       uint8 // 0..7
}

// Module status word bits
const (
	statusSoftAP     = 1 << 0
	statusStation    = 1 << 1
	statusOnboarding = 1 << 2
	statusBinding    = 1 << 3
	statusRouter     = 1 << 4
	statusCloud      = 1 << 5
	statusRSSIShift  = 8
	statusRSSIMask   = 0x07 << statusRSSIShift
	statusApp        = 1 << 11
	statusTestMode   = 1 << 12
)

// ParseModuleStatus decodes the big-endian status word.
func ParseModuleStatus(p []byte) (ModuleStatus, error) {
	if len(p) < moduleStatusLen {
		return ModuleStatus{}, fmt.Errorf("%w: module status is %d bytes", ErrInvalidPayload, len(p))
	}
	w := binary.BigEndian.Uint16(p)
	return ModuleStatus{
		SoftAP:     w&statusSoftAP != 0,
		Station:    w&statusStation != 0,
		Onboarding: w&statusOnboarding != 0,
		Binding:    w&statusBinding != 0,
		Router:     w&statusRouter != 0,
		Cloud:      w&statusCloud != 0,
		RSSI:       uint8((w & statusRSSIMask) >> statusRSSIShift),
		App:        w&statusApp != 0,
		TestMode:   w&statusTestMode != 0,
	}, nil
}

// Word encodes the status word.
func (s ModuleStatus) Word() uint16 {
	var w uint16
	set := func(cond bool, bit uint16) {
		if cond {
			w |= bit
		}
	}
	set(s.SoftAP, statusSoftAP)
	set(s.Station, statusStation)
	set(s.Onboarding, statusOnboarding)
	set(s.Binding, statusBinding)
	set(s.Router, statusRouter)
	set(s.Cloud, statusCloud)
	set(s.App, statusApp)
	set(s.TestMode, statusTestMode)
	w |= uint16(s.RSSI&0x07) << statusRSSIShift
	return w
}

// Bytes encodes the status payload.
func (s ModuleStatus) Bytes() []byte {
	return binary.BigEndian.AppendUint16(nil, s.Word())
}

// NetworkTime is the module's answer to a time request.
type NetworkTime struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
	Epoch  uint32 // Seconds since 1970-01-01 UTC
}

// ParseNetworkTime decodes a time acknowledgment payload.
func ParseNetworkTime(p []byte) (NetworkTime, error) {
	if len(p) < networkTimeLen {
		return NetworkTime{}, fmt.Errorf("%w: network time is %d bytes, want %d", ErrInvalidPayload, len(p), networkTimeLen)
	}
	return NetworkTime{
		Year:   binary.BigEndian.Uint16(p[0:2]),
		Month:  p[2],
		Day:    p[3],
		Hour:   p[4],
		Minute: p[5],
		Second: p[6],
		Epoch:  binary.BigEndian.Uint32(p[7:11]),
	}, nil
}

// Bytes encodes the time acknowledgment payload.
func (t NetworkTime) Bytes() []byte {
	buf := binary.BigEndian.AppendUint16(make([]byte, 0, networkTimeLen), t.Year)
	buf = append(buf, t.Month, t.Day, t.Hour, t.Minute, t.Second)
	return binary.BigEndian.AppendUint32(buf, t.Epoch)
}

// Time returns the epoch field as a time.Time.
func (t NetworkTime) Time() time.Time {
	return time.Unix(int64(t.Epoch), 0).UTC()
}

// ModuleInfo describes the Wi-Fi module.
type ModuleInfo struct {
	SerialVersion   string
	HardwareVersion string
	SoftwareVersion string
	MAC             string
	IP              string
	Attributes      [attributeFieldLen]byte
	Type            uint8
}

// ParseModuleInfo decodes a module info acknowledgment payload.
func ParseModuleInfo(p []byte) (ModuleInfo, error) {
	if len(p) < moduleInfoLen {
		return ModuleInfo{}, fmt.Errorf("%w: module info is %d bytes, want %d", ErrInvalidPayload, len(p), moduleInfoLen)
	}
	info := ModuleInfo{
		Type:            p[0],
		SerialVersion:   readFixed(p[1:9]),
		HardwareVersion: readFixed(p[9:17]),
		SoftwareVersion: readFixed(p[17:25]),
		MAC:             readFixed(p[25:41]),
		IP:              readFixed(p[41:57]),
	}
	copy(info.Attributes[:], p[57:65])
	return info, nil
}

// Bytes encodes the module info acknowledgment payload.
func (m ModuleInfo) Bytes() []byte {
	buf := append(make([]byte, 0, moduleInfoLen), m.Type)
	buf = appendFixed(buf, m.SerialVersion, versionFieldLen)
	buf = appendFixed(buf, m.HardwareVersion, versionFieldLen)
	buf = appendFixed(buf, m.SoftwareVersion, versionFieldLen)
	buf = appendFixed(buf, m.MAC, moduleAddrFieldLen)
	buf = appendFixed(buf, m.IP, moduleAddrFieldLen)
	return append(buf, m.Attributes[:]...)
}

// appendFixed appends s NUL-padded or truncated to n bytes.
func appendFixed(buf []byte, s string, n int) []byte {
	field := make([]byte, n)
	copy(field, s)
	return append(buf, field...)
}

// readFixed returns the text before the first NUL.
func readFixed(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
