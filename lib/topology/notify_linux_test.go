// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sysroute/sysroute/lib/clock"
	"github.com/sysroute/sysroute/lib/ref/reftest"
	"github.com/sysroute/sysroute/lib/testutil"
	"github.com/sysroute/sysroute/lib/topology"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "topology.cbor")
	network := sampleTopology(t)
	if err := topology.WriteFile(path, network); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fakeClock := clock.Fake(epoch)
	store := topology.NewStore(nil)
	reloads := make(chan reloadResult, 4)
	watcher, err := topology.NewWatcher(topology.WatcherConfig{
		Path:     path,
		Interval: time.Hour,
		Notify:   true,
		Store:    store,
		Clock:    fakeClock,
		Logger:   discardLogger(),
		OnReload: func(snapshot *topology.Snapshot, err error) {
			reloads <- reloadResult{snapshot: snapshot, err: err}
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	initial, err := watcher.Reload()
	if err != nil {
		t.Fatalf("initial Reload: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "Run did not return")
	})
	// The ticker exists only once the file watch is registered.
	fakeClock.WaitForTimers(1)

	// Other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(directory, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// The clock never advances: only the write can trigger this.
	delete(network.Subnets, reftest.SubnetID(2))
	if err := topology.WriteFile(path, network); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := testutil.RequireReceive(t, reloads, 5*time.Second, "no reload after writing the file")
	if result.err != nil || result.snapshot == nil {
		t.Fatalf("reload = %+v", result)
	}
	if result.snapshot.Fingerprint == initial.Fingerprint {
		t.Error("reload after write kept the old fingerprint")
	}
	if store.Load() != result.snapshot {
		t.Error("reloaded snapshot not published")
	}
}
