// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package topology implements "sysroute topology": consistency checks
// and format conversion for topology documents.
package topology
