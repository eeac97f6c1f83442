// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that reads the time or waits on an interval takes a [Clock]
// instead of calling time.Now, time.After or time.NewTicker. Binaries
// pass [Real]; tests pass [Fake], which moves only when Advance is
// called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	watcher := topology.NewWatcher(topology.WatcherConfig{Clock: c, ...})
//	go watcher.Run(ctx)
//	c.WaitForTimers(1)          // the watcher has created its ticker
//	c.Advance(30 * time.Second) // deliver one tick
//
// WaitForTimers closes the race between a goroutine registering a
// ticker and the test advancing past its deadline.
package clock
