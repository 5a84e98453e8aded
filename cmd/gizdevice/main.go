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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	gizwits "github.com/ZaparooProject/go-gizwits"
	"github.com/ZaparooProject/go-gizwits/datapoint"
	"github.com/ZaparooProject/go-gizwits/detection"
	"github.com/ZaparooProject/go-gizwits/polling"
	"github.com/ZaparooProject/go-gizwits/transport/uart"
)

// exitRestart tells a supervisor to start the device again
const exitRestart = 3

// exitCode maps how the device stopped to the process exit status
func exitCode(restarted bool) int {
	if restarted {
		return exitRestart
	}
	return 0
}

type config struct {
	devicePath    *string
	productKey    *string
	productSecret *string
	mode          *string
	baud          *int
	pollInterval  *time.Duration
	simulate      *time.Duration
	requestTime   *bool
	debug         *bool
	verbose       *bool
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Serial device path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection."),
		productKey:    flag.String("product-key", "", "Product key issued for the device"),
		productSecret: flag.String("product-secret", "", "Product secret issued for the device"),
		mode:          flag.String("mode", "", "Send a mode request at startup: reset, softap, airlink, production-test, bind-window"),
		baud:          flag.Int("baud", 9600, "Serial line speed"),
		pollInterval:  flag.Duration("poll-interval", 10*time.Millisecond, "Protocol poll interval"),
		simulate:      flag.Duration("simulate", time.Second, "Thermostat simulation step, 0 to disable"),
		requestTime:   flag.Bool("time", false, "Request network time from the module at startup"),
		debug:         flag.Bool("debug", false, "Enable protocol debug logging"),
		verbose:       flag.Bool("verbose", false, "Enable verbose output"),
	}
	flag.Parse()

	if *cfg.debug {
		gizwits.SetDebugEnabled(true)
	}
	return cfg
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := parseFlags()
	out := NewOutput(*cfg.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	path, err := resolvePort(*cfg.devicePath, out)
	if err != nil {
		out.Error("%v", err)
		return 1
	}

	transport, err := uart.New(path, uart.WithBaudRate(*cfg.baud))
	if err != nil {
		out.Error("failed to open %s: %v", path, err)
		return 1
	}
	defer func() { _ = transport.Close() }()

	schema, err := thermostatSchema()
	if err != nil {
		out.Error("%v", err)
		return 1
	}

	var restarted atomic.Bool
	loop := polling.NewLoop(&polling.Config{PollInterval: *cfg.pollInterval, ApplyControl: true}, polling.Callbacks{
		OnEvents: out.Batch,
		OnError:  func(err error) { out.Verbose("protocol: %v", err) },
		OnRestart: func() {
			out.Warning("module link lost, restarting")
		},
	})

	info := gizwits.DefaultDeviceInfo()
	info.ProductKey = *cfg.productKey
	info.ProductSecret = *cfg.productSecret
	engine, err := gizwits.New(transport, schema,
		gizwits.WithDeviceInfo(info),
		gizwits.WithEventHandler(loop),
		gizwits.WithRestarter(gizwits.RestartFunc(func() {
			restarted.Store(true)
			cancel()
		})),
	)
	if err != nil {
		out.Error("%v", err)
		return 1
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- transport.Listen(ctx, engine) }()

	if err := loop.Start(ctx, engine); err != nil {
		out.Error("%v", err)
		return 1
	}
	defer loop.Stop()
	out.OK("device running on %s", path)

	if err := startupRequests(ctx, loop, cfg); err != nil {
		out.Error("%v", err)
	}

	var tick <-chan time.Time
	if *cfg.simulate > 0 {
		ticker := time.NewTicker(*cfg.simulate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			code := exitCode(restarted.Load())
			if code == 0 {
				_, _ = fmt.Print("\nShutting down gracefully...\n")
			}
			return code
		case <-loop.Done():
			// The loop also ends when ctx is cancelled
			return exitCode(restarted.Load())
		case err := <-listenErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				out.Error("serial link: %v", err)
				return 1
			}
		case <-tick:
			if err := loop.Update(ctx, simulateStep); err != nil && !errors.Is(err, context.Canceled) {
				out.Warning("simulation: %v", err)
			}
		}
	}
}

func resolvePort(path string, out *Output) (string, error) {
	if path != "" {
		return path, nil
	}
	out.Info("auto-detecting module port...")
	port, err := detection.DetectPort(detection.Options{})
	if err != nil {
		return "", fmt.Errorf("port detection failed: %w", err)
	}
	out.Info("using %s", port)
	return port.Path, nil
}

func startupRequests(ctx context.Context, loop *polling.Loop, cfg *config) error {
	if *cfg.mode != "" {
		mode, err := gizwits.ParseMode(*cfg.mode)
		if err != nil {
			return err
		}
		if err := loop.Do(ctx, func(e *gizwits.Engine, _ *datapoint.Snapshot) error {
			return e.SetMode(mode)
		}); err != nil {
			return fmt.Errorf("set mode %s: %w", mode, err)
		}
	}
	if *cfg.requestTime {
		if err := loop.Do(ctx, func(e *gizwits.Engine, _ *datapoint.Snapshot) error {
			return e.RequestNetworkTime()
		}); err != nil {
			return fmt.Errorf("request network time: %w", err)
		}
	}
	return nil
}
