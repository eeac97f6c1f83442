// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/config"
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/routing"
	"github.com/sysroute/sysroute/lib/schema/resolver"
	"github.com/sysroute/sysroute/lib/topology"
)

type resolveParams struct {
	callParams
	cli.JSONOutput
	Topology string `json:"topology" flag:"topology,t" desc:"topology file (default: topology.path from --config)"`
	Config   string `json:"config"   flag:"config,c"   desc:"sysroute.yaml supplying the topology path and own subnet"`
}

// ResolveCommand returns the "resolve" command.
func ResolveCommand() *cli.Command {
	var params resolveParams

	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve a call's destination against a topology file",
		Description: `Resolve the subnet that must execute a management call, using a
topology file on disk. No service is contacted.

The topology comes from --topology, or from topology.path in the
--config file. The own subnet (where own-subnet methods execute) comes
from --own-subnet or routing.own_subnet in the config; it is only
required for methods that route to the own subnet.`,
		Usage: "sysroute resolve <method> [flags]",
		Examples: []cli.Example{
			{
				Description: "Route a stop_canister call",
				Command:     "sysroute resolve stop_canister -t topology.yaml --args stop.yaml",
			},
			{
				Description: "Route a raw payload, JSON output",
				Command:     "sysroute resolve sign_with_ecdsa -t topology.cbor --payload-file sign.cbor --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("resolve", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("usage: sysroute resolve <method> [flags]")
			}
			return runResolve(args[0], &params)
		},
	}
}

func runResolve(methodName string, params *resolveParams) error {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return err
	}

	topologyPath := params.Topology
	if topologyPath == "" && cfg != nil {
		topologyPath = cfg.Topology.Path
	}
	if topologyPath == "" {
		return errors.New("--topology or --config is required")
	}

	network, err := topology.ReadFile(topologyPath)
	if err != nil {
		return err
	}
	fingerprint, err := topology.ComputeFingerprint(network)
	if err != nil {
		return err
	}

	ownSubnet, err := localOwnSubnet(methodName, params.OwnSubnet, cfg)
	if err != nil {
		return err
	}
	receiver, err := params.receiver()
	if err != nil {
		return err
	}
	payload, err := params.load(methodName)
	if err != nil {
		return err
	}

	destination, err := routing.ResolveCall(network, receiver, methodName, payload, ownSubnet)
	if err != nil {
		return fmt.Errorf("resolving %s (%s): %w", methodName, routing.Code(err), err)
	}

	response := resolver.ResolveResponse{
		Destination:         destination,
		Class:               className(methodName),
		TopologyFingerprint: fingerprint,
	}
	if done, err := params.EmitJSON(response); done {
		return err
	}
	printResolution(response)
	return nil
}

// localOwnSubnet picks the own subnet from the flag, then the config.
// Own-subnet methods always return it and Bitcoin methods fall back to
// it, so both classes require one. Canister and ECDSA methods never
// read it, so it may be left unset for them.
func localOwnSubnet(methodName, flagValue string, cfg *config.Config) (ref.SubnetID, error) {
	if flagValue != "" {
		subnet, err := ref.ParseSubnetID(flagValue)
		if err != nil {
			return ref.SubnetID{}, fmt.Errorf("--own-subnet: %w", err)
		}
		return subnet, nil
	}
	if cfg != nil && cfg.Routing.OwnSubnet != "" {
		return cfg.Routing.OwnSubnetID()
	}
	switch className(methodName) {
	case routing.ClassOwnSubnet.String():
		return ref.SubnetID{}, fmt.Errorf("%s executes on the own subnet: --own-subnet is required", methodName)
	case routing.ClassBitcoin.String():
		return ref.SubnetID{}, fmt.Errorf("%s falls back to the own subnet: --own-subnet is required", methodName)
	}
	return ref.SubnetID{}, nil
}

// className returns the routing class of a method name, or "" for an
// unknown method.
func className(methodName string) string {
	method, ok := mgmt.ParseMethod(methodName)
	if !ok {
		return ""
	}
	class, _ := routing.ClassOf(method)
	return class.String()
}

func printResolution(response resolver.ResolveResponse) {
	fmt.Fprintf(cli.Stdout, "destination:  %s\n", response.Destination)
	fmt.Fprintf(cli.Stdout, "class:        %s\n", response.Class)
	fmt.Fprintf(cli.Stdout, "topology:     %s\n", response.TopologyFingerprint)
}
