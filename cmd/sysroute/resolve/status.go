// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/schema/resolver"
)

type statusParams struct {
	connectionParams
	cli.JSONOutput
}

// StatusCommand returns the "status" command.
func StatusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show a running service's topology snapshot",
		Usage:   "sysroute status [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runStatus(&params)
		},
	}
}

func runStatus(params *statusParams) error {
	client, err := params.client()
	if err != nil {
		return err
	}
	ctx, cancel := params.timeoutContext()
	defer cancel()

	var status resolver.StatusResponse
	if err := client.Call(ctx, resolver.ActionStatus, nil, &status); err != nil {
		return err
	}

	if done, err := params.EmitJSON(status); done {
		return err
	}

	out := cli.Stdout
	fmt.Fprintf(out, "version:       %s\n", status.Version)
	fmt.Fprintf(out, "own subnet:    %s\n", status.OwnSubnet)
	fmt.Fprintf(out, "topology:      %s\n", status.Fingerprint)
	fmt.Fprintf(out, "source:        %s\n", status.Source)
	fmt.Fprintf(out, "loaded:        %s\n", time.Unix(status.LoadedAt, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "uptime:        %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	fmt.Fprintf(out, "subnets:       %d\n", status.Subnets)
	fmt.Fprintf(out, "ranges:        %d\n", status.Ranges)
	fmt.Fprintf(out, "signing keys:  %d\n", status.SigningKeys)
	if len(status.Issues) > 0 {
		fmt.Fprintf(out, "\n%d issue(s):\n", len(status.Issues))
		for _, issue := range status.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
	}
	return nil
}
