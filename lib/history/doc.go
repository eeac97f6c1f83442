// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package history records every topology snapshot the resolver
// publishes in a SQLite database, so operators can see which topology
// answered calls at a given time.
//
// The database runs in WAL mode behind a small connection pool
// (zombiezen.com/go/sqlite/sqlitex). Writes come from the topology
// watcher goroutine; reads come from socket handlers. Each recorded
// row carries the snapshot fingerprint, source path, load time and
// shape counts. Rows beyond the retention limit are pruned on every
// insert, oldest first.
package history
