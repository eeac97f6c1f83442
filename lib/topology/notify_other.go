// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package topology

import (
	"context"
	"errors"
)

// watchFile is only implemented on Linux. Elsewhere the Watcher polls.
func watchFile(context.Context, string) (<-chan struct{}, error) {
	return nil, errors.ErrUnsupported
}
