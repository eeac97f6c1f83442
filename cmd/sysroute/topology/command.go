// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import "github.com/sysroute/sysroute/cmd/sysroute/cli"

// Command returns the "topology" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "topology",
		Summary: "Check and convert topology documents",
		Description: `Work with topology documents: the subnets, canister routing table
and ECDSA signing index that calls are resolved against.

The format is chosen from the file extension: .yaml/.yml, .jsonc/.json,
.cbor, .cbor.zst (zstd) or .cbor.lz4.`,
		Subcommands: []*cli.Command{
			checkCommand(),
			convertCommand(),
		},
	}
}
