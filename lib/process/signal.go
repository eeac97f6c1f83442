// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal registration; a second
// signal after stop terminates the process with the default action.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
