// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver defines the request and response types of the
// resolver service socket protocol. The service (cmd/sysroute-service)
// and its clients (the sysroute CLI) share these definitions so both
// sides agree on field names and encodings.
package resolver
