// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/topology"
)

type checkParams struct {
	cli.JSONOutput
}

// checkResult is the JSON form of a check.
type checkResult struct {
	Path        string               `json:"path"`
	Fingerprint topology.Fingerprint `json:"fingerprint"`
	Subnets     int                  `json:"subnets"`
	Ranges      int                  `json:"ranges"`
	SigningKeys []string             `json:"signing_keys"`
	Issues      []string             `json:"issues"`
}

func checkCommand() *cli.Command {
	var params checkParams

	return &cli.Command{
		Name:    "check",
		Summary: "Validate a topology document and report its fingerprint",
		Description: `Parse a topology document, report its fingerprint and shape, and
list consistency issues: signing entries naming unknown subnets,
signers that do not hold their key, routing table owners missing from
the subnet list, and Bitcoin canisters that are not routed.

Exits 1 when the document has issues.`,
		Usage: "sysroute topology check <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("usage: sysroute topology check <path> [flags]")
			}
			return runCheck(args[0], &params)
		},
	}
}

func runCheck(path string, params *checkParams) error {
	network, err := topology.ReadFile(path)
	if err != nil {
		return err
	}
	fingerprint, err := topology.ComputeFingerprint(network)
	if err != nil {
		return err
	}

	result := checkResult{
		Path:        path,
		Fingerprint: fingerprint,
		Subnets:     len(network.Subnets),
		Ranges:      network.RoutingTable.Len(),
		SigningKeys: []string{},
		Issues:      []string{},
	}
	for _, key := range network.SigningKeys() {
		result.SigningKeys = append(result.SigningKeys, key.String())
	}
	for _, issue := range network.Check() {
		result.Issues = append(result.Issues, issue.String())
	}

	if done, err := params.EmitJSON(result); done {
		if err != nil {
			return err
		}
		return issuesExit(result.Issues)
	}

	out := cli.Stdout
	fmt.Fprintf(out, "%s\n", path)
	fmt.Fprintf(out, "  fingerprint:   %s\n", result.Fingerprint)
	fmt.Fprintf(out, "  subnets:       %d\n", result.Subnets)
	fmt.Fprintf(out, "  ranges:        %d\n", result.Ranges)
	fmt.Fprintf(out, "  signing keys:  %d\n", len(result.SigningKeys))
	for _, key := range result.SigningKeys {
		fmt.Fprintf(out, "    %s\n", key)
	}
	if len(result.Issues) == 0 {
		fmt.Fprintf(out, "  no issues\n")
		return nil
	}
	fmt.Fprintf(out, "  %d issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    %s\n", issue)
	}
	return issuesExit(result.Issues)
}

func issuesExit(issues []string) error {
	if len(issues) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
