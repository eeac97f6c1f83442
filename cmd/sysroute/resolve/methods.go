// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/routing"
	"github.com/sysroute/sysroute/lib/schema/resolver"
)

type methodsParams struct {
	cli.JSONOutput
	Class string `json:"class" flag:"class" desc:"only list methods of this routing class"`
}

// MethodsCommand returns the "methods" command.
func MethodsCommand() *cli.Command {
	var params methodsParams

	return &cli.Command{
		Name:    "methods",
		Summary: "List management methods and their routing classes",
		Description: `List every management method with the class that decides its
destination:

  own_subnet   executes where the call originates
  canister     the subnet hosting the target canister
  bitcoin      a subnet serving the requested Bitcoin network
  ecdsa        a subnet holding or signing with the requested key`,
		Usage: "sysroute methods [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("methods", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runMethods(&params)
		},
	}
}

func runMethods(params *methodsParams) error {
	var methods []resolver.MethodInfo
	for _, route := range routing.Routes() {
		if params.Class != "" && route.Class.String() != params.Class {
			continue
		}
		methods = append(methods, resolver.MethodInfo{
			Name:  route.Method.String(),
			Class: route.Class.String(),
		})
	}

	if done, err := params.EmitJSON(methods); done {
		return err
	}

	writer := tabwriter.NewWriter(cli.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "METHOD\tCLASS\n")
	for _, method := range methods {
		fmt.Fprintf(writer, "%s\t%s\n", method.Name, method.Class)
	}
	return writer.Flush()
}
