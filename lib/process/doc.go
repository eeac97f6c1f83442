// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for sysroute
// binaries: fatal error reporting before the structured logger exists,
// and signal-driven shutdown contexts.
package process
