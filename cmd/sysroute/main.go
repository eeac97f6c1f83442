// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Sysroute is the operator CLI for management-call routing. It resolves
// calls locally against a topology file or through a running
// sysroute-service, encodes argument records, and checks and converts
// topology documents.
package main

import (
	"fmt"
	"os"

	"github.com/sysroute/sysroute/cmd/sysroute/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like topology check)
		// return an ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
