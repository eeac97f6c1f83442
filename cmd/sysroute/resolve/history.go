// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/schema/resolver"
)

type historyParams struct {
	connectionParams
	cli.JSONOutput
	Limit int `json:"limit" flag:"limit,n" default:"20" desc:"number of snapshots to show (0 for all retained)"`
}

// HistoryCommand returns the "history" command.
func HistoryCommand() *cli.Command {
	var params historyParams

	return &cli.Command{
		Name:    "history",
		Summary: "List the topology snapshots a running service has published",
		Description: `List recently published topology snapshots, newest first. The
service must run with history.path set.`,
		Usage: "sysroute history [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("history", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runHistory(&params)
		},
	}
}

func runHistory(params *historyParams) error {
	if params.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", params.Limit)
	}
	client, err := params.client()
	if err != nil {
		return err
	}
	ctx, cancel := params.timeoutContext()
	defer cancel()

	var entries []resolver.HistoryEntry
	if err := client.Call(ctx, resolver.ActionHistory, map[string]any{"limit": params.Limit}, &entries); err != nil {
		return err
	}

	if done, err := params.EmitJSON(entries); done {
		return err
	}

	writer := tabwriter.NewWriter(cli.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "LOADED\tFINGERPRINT\tSUBNETS\tRANGES\tKEYS\tISSUES\tSOURCE\n")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			time.Unix(entry.LoadedAt, 0).UTC().Format(time.RFC3339),
			entry.Fingerprint.Short(),
			entry.Subnets,
			entry.Ranges,
			entry.SigningKeys,
			entry.Issues,
			entry.Source,
		)
	}
	return writer.Flush()
}
