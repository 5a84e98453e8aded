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

	"github.com/ZaparooProject/go-gizwits/datapoint"
	"github.com/ZaparooProject/go-gizwits/internal/frame"
)

// Common errors
var (
	// Transport errors
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportClosed  = errors.New("transport closed")
	ErrShortWrite       = errors.New("transport wrote fewer bytes than requested")

	// Protocol errors
	ErrChecksumMismatch = frame.ErrChecksumMismatch
	ErrFrameCorrupted   = errors.New("frame corrupted")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidPayload   = datapoint.ErrInvalidPayload
	ErrNoACK            = errors.New("no acknowledgment received")

	// Engine errors
	ErrRestarted        = errors.New("engine restarted")
	ErrQueueFull        = errors.New("receive queue full")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDataTooLarge     = errors.New("data too large")
)

// ErrorType classifies errors for recovery decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates the operation will not succeed if repeated
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates a momentary fault, such as line noise
	ErrorTypeTransient
	// ErrorTypeTimeout indicates the peer did not answer in time
	ErrorTypeTimeout
	// ErrorTypeFatal indicates the engine restarted the device
	ErrorTypeFatal
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError describes a failure of the byte transport
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error; transient and timeout
// errors are retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a timeout transport error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// ProtocolError describes a failure while handling a frame
type ProtocolError struct {
	Err       error
	Op        string
	Type      ErrorType
	Cmd       byte
	Retryable bool
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s (cmd 0x%02X): %v", e.Op, e.Cmd, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a protocol error for command cmd
func NewProtocolError(op string, cmd byte, err error, errType ErrorType) *ProtocolError {
	return &ProtocolError{
		Op:        op,
		Cmd:       cmd,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// IsRetryable reports whether the operation that produced err may succeed
// if repeated
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Retryable
	}

	switch {
	case errors.Is(err, ErrRestarted):
		return false
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrShortWrite),
		errors.Is(err, ErrNoACK),
		errors.Is(err, ErrFrameCorrupted),
		errors.Is(err, ErrChecksumMismatch):
		return true
	default:
		return false
	}
}

// GetErrorType classifies err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Type
	}

	switch {
	case errors.Is(err, ErrRestarted):
		return ErrorTypeFatal
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrNoACK):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrShortWrite),
		errors.Is(err, ErrFrameCorrupted),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrQueueFull):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
