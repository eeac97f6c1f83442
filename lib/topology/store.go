// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sysroute/sysroute/lib/clock"
)

// Snapshot is a published topology with its provenance. A Snapshot
// and the topology it carries are immutable once published.
type Snapshot struct {
	Topology    *NetworkTopology
	Fingerprint Fingerprint
	Source      string
	LoadedAt    time.Time
}

// NewSnapshot fingerprints t and wraps it for publication.
func NewSnapshot(t *NetworkTopology, source string, loadedAt time.Time) (*Snapshot, error) {
	fingerprint, err := ComputeFingerprint(t)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Topology:    t,
		Fingerprint: fingerprint,
		Source:      source,
		LoadedAt:    loadedAt,
	}, nil
}

// Store holds the current snapshot. Readers call Load once per
// resolution and use that snapshot for the whole call, so a concurrent
// Swap never changes the topology under a resolution in progress.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store publishing initial. Initial may be nil.
func NewStore(initial *Snapshot) *Store {
	store := &Store{}
	if initial != nil {
		store.current.Store(initial)
	}
	return store
}

// Load returns the current snapshot, or nil if none is published.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Swap publishes snapshot and returns the one it replaced.
func (s *Store) Swap(snapshot *Snapshot) *Snapshot {
	return s.current.Swap(snapshot)
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Path is the topology file. Its extension selects the format.
	Path string

	// Interval between reload attempts. Must be positive.
	Interval time.Duration

	// Notify also reloads as soon as the file is written, where the
	// platform supports file notifications (Linux inotify). The
	// interval keeps running as a fallback.
	Notify bool

	// Store receives new snapshots.
	Store *Store

	Clock  clock.Clock
	Logger *slog.Logger

	// OnReload, if set, is called from the Run goroutine after every
	// reload attempt. Snapshot is non-nil when a new snapshot was
	// published; err is non-nil when the attempt failed.
	OnReload func(snapshot *Snapshot, err error)
}

// Watcher reloads a topology file into a Store. A reload that fails
// to read or build the file leaves the published snapshot in place. A
// file whose fingerprint matches the published snapshot is not
// republished.
type Watcher struct {
	config WatcherConfig
}

// NewWatcher validates config and returns a Watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Path == "" {
		return nil, errors.New("topology watcher: path is required")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("topology watcher: interval must be positive, got %v", config.Interval)
	}
	if config.Store == nil {
		return nil, errors.New("topology watcher: store is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{config: config}, nil
}

// Reload reads the file once. Returns the published snapshot, or nil
// when the file's content matches the current snapshot.
func (w *Watcher) Reload() (*Snapshot, error) {
	topology, err := ReadFile(w.config.Path)
	if err != nil {
		return nil, err
	}
	snapshot, err := NewSnapshot(topology, w.config.Path, w.config.Clock.Now())
	if err != nil {
		return nil, err
	}

	previous := w.config.Store.Load()
	if previous != nil && previous.Fingerprint == snapshot.Fingerprint {
		return nil, nil
	}
	w.config.Store.Swap(snapshot)

	attributes := []any{
		"path", w.config.Path,
		"fingerprint", snapshot.Fingerprint.Short(),
		"subnets", len(topology.Subnets),
		"ranges", topology.RoutingTable.Len(),
	}
	if previous != nil {
		attributes = append(attributes, "previous_fingerprint", previous.Fingerprint.Short())
	}
	w.config.Logger.Info("topology reloaded", attributes...)
	for _, issue := range topology.Check() {
		w.config.Logger.Warn("topology inconsistency", "kind", issue.Kind, "detail", issue.Detail)
	}
	return snapshot, nil
}

// Run reloads on every tick, and on every write to the file when
// Notify is set, until ctx is cancelled. Returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	// A nil channel never fires: without notifications only the ticker
	// drives reloads. The watch is in place before the ticker exists.
	var changes <-chan struct{}
	if w.config.Notify {
		var err error
		changes, err = watchFile(ctx, w.config.Path)
		if err != nil {
			w.config.Logger.Warn("topology file notifications unavailable, polling only",
				"path", w.config.Path,
				"error", err,
			)
		}
	}

	ticker := w.config.Clock.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.attempt("tick")
		case <-changes:
			w.attempt("notify")
		}
	}
}

func (w *Watcher) attempt(trigger string) {
	snapshot, err := w.Reload()
	if err != nil {
		w.config.Logger.Error("topology reload failed, keeping previous snapshot",
			"path", w.config.Path,
			"trigger", trigger,
			"error", err,
		)
	}
	if w.config.OnReload != nil {
		w.config.OnReload(snapshot, err)
	}
}
