// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	saved := [...]string{GitCommit, GitDirty, BuildTime, Version}
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime, Version = saved[0], saved[1], saved[2], saved[3]
	})

	GitCommit, GitDirty, BuildTime, Version = "abc1234", "false", "2026-10-01T00:00:00Z", "1.2.0"
	if got := Info(); got != "1.2.0 (abc1234, 2026-10-01T00:00:00Z)" {
		t.Errorf("Info() = %q", got)
	}

	GitDirty = "true"
	if got := Info(); got != "1.2.0 (abc1234-dirty, 2026-10-01T00:00:00Z)" {
		t.Errorf("Info() dirty = %q", got)
	}
	if Short() != "1.2.0" || Commit() != "abc1234" {
		t.Errorf("Short() = %q, Commit() = %q", Short(), Commit())
	}
	if full := Full(); !strings.HasPrefix(full, Info()) || !strings.Contains(full, "Platform: ") {
		t.Errorf("Full() = %q", full)
	}
}
