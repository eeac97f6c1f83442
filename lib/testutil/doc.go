// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend] and [RequireClosed] wrap the timeout
// safety valve (select with a time.After fallback) so tests waiting on
// goroutines never hang and never call time.After themselves. They are
// the only place tests use real wall-clock time; everything else runs
// on lib/clock's fake clock.
//
// [SocketDir] returns a short temporary directory for Unix sockets,
// whose paths are limited to 108 bytes. [WriteFile] writes a fixture
// file into a test directory.
//
// All helpers call t.Fatalf on failure.
package testutil
