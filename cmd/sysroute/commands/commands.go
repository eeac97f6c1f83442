// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete sysroute CLI command tree.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	resolvecmd "github.com/sysroute/sysroute/cmd/sysroute/resolve"
	topologycmd "github.com/sysroute/sysroute/cmd/sysroute/topology"
	"github.com/sysroute/sysroute/lib/version"
)

// Root builds and returns the complete sysroute CLI command tree.
func Root() *cli.Command {
	var showVersion bool

	var root *cli.Command
	root = &cli.Command{
		Name: "sysroute",
		Description: `Sysroute: destination resolution for management calls.

Resolve which subnet must execute a call addressed to the management
canister, locally against a topology file or through a running
sysroute-service. Encode argument records, and check or convert
topology documents.`,
		Subcommands: []*cli.Command{
			resolvecmd.ResolveCommand(),
			resolvecmd.CallCommand(),
			resolvecmd.StatusCommand(),
			resolvecmd.EncodeCommand(),
			resolvecmd.MethodsCommand(),
			resolvecmd.HistoryCommand(),
			topologycmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(cli.Stdout, "sysroute %s\n", version.Full())
					return nil
				},
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("sysroute", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Run: func(args []string) error {
			if showVersion {
				fmt.Fprintf(cli.Stdout, "sysroute %s\n", version.Full())
				return nil
			}
			root.PrintHelp(os.Stderr)
			return errors.New("subcommand required")
		},
	}
	return root
}
